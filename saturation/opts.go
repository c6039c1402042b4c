package saturation

// Opts contains the tunable knobs of the saturation pipeline.
type Opts struct {
	// CellLabel is the classification value that marks a barcode as a
	// real cell.  The match is case-sensitive and exact.
	CellLabel string

	// PlateauFraction is the fraction of the fitted asymptote Vmax at
	// which the curve is considered to have reached its knee.
	PlateauFraction float64

	// TargetDepth is the desired number of reads per real cell used by
	// the depth projection.
	TargetDepth float64

	// GridPoints is the number of points on the dense grid over which
	// the fitted model is evaluated.
	GridPoints int
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	CellLabel:       "cell",
	PlateauFraction: 0.9,
	TargetDepth:     10000,
	GridPoints:      1000,
}
