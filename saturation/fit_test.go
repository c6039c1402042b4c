package saturation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mmPoints generates noiseless saturation points from the model.
func mmPoints(vmax, km float64, depths []int) []SaturationPoint {
	points := make([]SaturationPoint, len(depths))
	for i, d := range depths {
		points[i] = SaturationPoint{
			Reads:      d,
			Saturation: MichaelisMenten(float64(d), vmax, km),
		}
	}
	return points
}

func depthGrid(from, to, step int) []int {
	var depths []int
	for d := from; d <= to; d += step {
		depths = append(depths, d)
	}
	return depths
}

func TestFitRecoversNoiselessParameters(t *testing.T) {
	points := mmPoints(0.8, 3000, depthGrid(500, 20000, 500))
	fit, err := FitMichaelisMenten(points)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, fit.Vmax, 1e-3)
	assert.InDelta(t, 3000, fit.Km, 10)
	require.True(t, fit.RSquaredOK)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-6)

	// Noiseless data: the propagated parameter errors collapse.
	assert.InDelta(t, 0, fit.VmaxStdErr, 1e-3)
	assert.InDelta(t, 0, fit.KmStdErr, 10)

	assert.Equal(t, 500.0, fit.MinReads)
	assert.Equal(t, 20000.0, fit.MaxReads)
}

func TestFitInsufficientData(t *testing.T) {
	_, err := FitMichaelisMenten(nil)
	assert.Equal(t, ErrInsufficientData, err)

	_, err = FitMichaelisMenten([]SaturationPoint{{Reads: 1000, Saturation: 0.5}})
	assert.Equal(t, ErrInsufficientData, err)

	// Two points sharing one depth are just as degenerate.
	_, err = FitMichaelisMenten([]SaturationPoint{
		{Reads: 1000, Saturation: 0.5},
		{Reads: 1000, Saturation: 0.6},
	})
	assert.Equal(t, ErrInsufficientData, err)
}

func TestFitFlatSaturation(t *testing.T) {
	// All observed saturations identical: SS_tot is 0 and R-squared is
	// undefined, but the fit itself must not fail.
	points := []SaturationPoint{
		{Reads: 1000, Saturation: 0.5},
		{Reads: 2000, Saturation: 0.5},
		{Reads: 4000, Saturation: 0.5},
	}
	fit, err := FitMichaelisMenten(points)
	require.NoError(t, err)
	assert.False(t, fit.RSquaredOK)
	assert.InDelta(t, 0.5, fit.Eval(2000), 0.05)
}

func TestFitEvalMatchesModel(t *testing.T) {
	fit := FitResult{Vmax: 0.8, Km: 3000}
	assert.InDelta(t, 0.4, fit.Eval(3000), 1e-12)
	assert.Equal(t, 0.0, fit.Eval(0))
}
