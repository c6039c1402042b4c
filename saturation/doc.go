// Package saturation estimates sequencing saturation for single-cell
// long-read libraries.  It tallies unique molecules (UMIs) per cell
// barcode, restricts the tally to barcodes classified as real cells,
// computes per-cell and global duplication indices, fits a
// Michaelis-Menten model to the reads-vs-saturation relationship, and
// projects the additional sequencing needed to reach a target per-cell
// depth.
//
// The pipeline is a chain of immutable values: a Tally built from the
// read stream feeds Summarize, whose Summary feeds FitMichaelisMenten,
// whose FitResult feeds Curve and Project.  Tally construction and
// summary metrics always complete; a fit failure leaves them intact.
package saturation
