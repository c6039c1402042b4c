package saturation

import (
	"gonum.org/v1/gonum/floats"
)

// Curve is the fitted model evaluated on a dense grid over the observed
// read-depth range, trimmed at the knee when one exists.
type Curve struct {
	// X and Y are the grid depths and model values over the trimmed
	// domain.
	X, Y []float64
	// Upper and Lower bound the fit over the trimmed domain, evaluated
	// at (Vmax+sigma, Km+sigma) and (Vmax-sigma, Km-sigma).
	Upper, Lower []float64
	// KneeX is the first grid depth at which the model reaches the
	// plateau fraction of Vmax.  HasKnee is false when the model never
	// reaches the plateau within the observed range; that is a valid
	// outcome, and the full range is kept as the domain.
	KneeX   float64
	HasKnee bool
}

// Curve evaluates the fitted model on an opts.GridPoints-point grid
// spanning [MinReads, MaxReads], locates the knee, and trims the domain
// to [MinReads, KneeX] when the knee exists.
func (f *FitResult) Curve(opts Opts) Curve {
	gridPoints := opts.GridPoints
	if gridPoints < 2 {
		gridPoints = DefaultOpts.GridPoints
	}
	x := make([]float64, gridPoints)
	floats.Span(x, f.MinReads, f.MaxReads)

	c := Curve{X: x, Y: make([]float64, gridPoints)}
	target := opts.PlateauFraction * f.Vmax
	for i, xi := range x {
		c.Y[i] = f.Eval(xi)
		if !c.HasKnee && c.Y[i] >= target {
			c.KneeX = xi
			c.HasKnee = true
			c.X = x[:i+1]
			c.Y = c.Y[:i+1]
			break
		}
	}

	c.Upper = make([]float64, len(c.X))
	c.Lower = make([]float64, len(c.X))
	for i, xi := range c.X {
		c.Upper[i] = MichaelisMenten(xi, f.Vmax+f.VmaxStdErr, f.Km+f.KmStdErr)
		c.Lower[i] = MichaelisMenten(xi, f.Vmax-f.VmaxStdErr, f.Km-f.KmStdErr)
	}
	return c
}

// Projection estimates the additional sequencing needed to bring the
// mean real-cell depth up to the target.
type Projection struct {
	// TargetDepth is the desired reads per real cell.
	TargetDepth float64
	// ExtraPerCell is the additional depth each real cell needs, never
	// negative.
	ExtraPerCell float64
	// ExtraRealCells is ExtraPerCell summed over all real cells.
	ExtraRealCells float64
	// TotalExtraRequired scales ExtraRealCells by the fraction of the
	// library that lands in real cells.  It is 0 when that fraction is
	// 0, which also covers the no-real-cells case.
	TotalExtraRequired float64
}

// Project computes the depth projection for the given summary.
func Project(s Summary, opts Opts) Projection {
	p := Projection{TargetDepth: opts.TargetDepth}
	p.ExtraPerCell = opts.TargetDepth - s.MeanReads
	if p.ExtraPerCell < 0 {
		p.ExtraPerCell = 0
	}
	p.ExtraRealCells = p.ExtraPerCell * float64(s.FilteredCells)
	if s.FractionInRealCells > 0 {
		p.TotalExtraRequired = p.ExtraRealCells / s.FractionInRealCells
	}
	return p
}
