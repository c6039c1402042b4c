package saturation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveKneeAtNineKm(t *testing.T) {
	// For vmax*x/(km+x) = 0.9*vmax, x = 9*km exactly.
	points := mmPoints(0.8, 3000, depthGrid(500, 50000, 500))
	fit, err := FitMichaelisMenten(points)
	require.NoError(t, err)

	curve := fit.Curve(DefaultOpts)
	require.True(t, curve.HasKnee)
	assert.InDelta(t, 3000, fit.Km, 10)
	gridStep := (fit.MaxReads - fit.MinReads) / float64(DefaultOpts.GridPoints-1)
	assert.InDelta(t, 9*fit.Km, curve.KneeX, gridStep+1e-6)

	// The domain is trimmed at the knee.
	assert.Equal(t, curve.KneeX, curve.X[len(curve.X)-1])
	assert.True(t, len(curve.X) < DefaultOpts.GridPoints)
	assert.Equal(t, len(curve.X), len(curve.Y))
	assert.Equal(t, len(curve.X), len(curve.Upper))
	assert.Equal(t, len(curve.X), len(curve.Lower))

	// Noiseless fit: the confidence band collapses onto the curve.
	for i := range curve.X {
		assert.InDelta(t, curve.Y[i], curve.Upper[i], 1e-2)
		assert.InDelta(t, curve.Y[i], curve.Lower[i], 1e-2)
	}
}

func TestCurveWithoutKnee(t *testing.T) {
	// Depths stay below 9*km, so the plateau is never reached.  That is
	// a valid outcome, and the full observed range is kept.
	points := mmPoints(0.8, 3000, depthGrid(500, 10000, 500))
	fit, err := FitMichaelisMenten(points)
	require.NoError(t, err)

	curve := fit.Curve(DefaultOpts)
	assert.False(t, curve.HasKnee)
	assert.Equal(t, DefaultOpts.GridPoints, len(curve.X))
	assert.Equal(t, fit.MinReads, curve.X[0])
	assert.Equal(t, fit.MaxReads, curve.X[len(curve.X)-1])
}

func TestProject(t *testing.T) {
	s := Summary{
		MeanReads:           2666.67,
		FilteredCells:       3,
		FractionInRealCells: 0.8,
	}
	p := Project(s, DefaultOpts)
	assert.Equal(t, 10000.0, p.TargetDepth)
	assert.InDelta(t, 7333.33, p.ExtraPerCell, 1e-9)
	assert.InDelta(t, 22000.0, p.ExtraRealCells, 1e-6)
	assert.InDelta(t, 27500.0, p.TotalExtraRequired, 1e-6)
}

func TestProjectAtTarget(t *testing.T) {
	s := Summary{MeanReads: 12000, FilteredCells: 3, FractionInRealCells: 0.5}
	p := Project(s, DefaultOpts)
	assert.Equal(t, 0.0, p.ExtraPerCell)
	assert.Equal(t, 0.0, p.ExtraRealCells)
	assert.Equal(t, 0.0, p.TotalExtraRequired)
}

func TestProjectZeroFraction(t *testing.T) {
	// No reads in real cells: the projection is guarded to 0 rather
	// than dividing by zero.
	s := Summary{MeanReads: 0, FilteredCells: 0, FractionInRealCells: 0}
	p := Project(s, DefaultOpts)
	assert.Equal(t, 10000.0, p.ExtraPerCell)
	assert.Equal(t, 0.0, p.ExtraRealCells)
	assert.Equal(t, 0.0, p.TotalExtraRequired)
}
