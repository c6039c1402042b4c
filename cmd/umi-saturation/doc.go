// umi-saturation tallies UMIs per cell barcode from a tag-corrected
// single-cell long-read BAM, writes the per-(barcode, UMI) counts to a
// TSV, computes per-cell and global sequencing-saturation metrics for
// the barcodes classified as real cells, fits a Michaelis-Menten model
// to the reads-vs-saturation relationship, and renders a saturation
// figure with a diminishing-returns knee and an extra-sequencing
// projection.
//
// The cell barcode is read from the CB aux tag and the UMI from the XM
// aux tag; reads missing either tag are skipped.  Real cells are the
// barcodes whose RealCell column equals "cell" in the barcode-stats
// table.
//
// Example:
//
//	umi-saturation -bam scisoseq.mapped.bam -tsv-out umi_counts.tsv \
//	    -bcstats bcstats_report.tsv -plot saturation.png
package main
