package satplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MethodsDev/masseq-data-processing/saturation"
)

func testSummary() saturation.Summary {
	return saturation.Summary{
		Points: []saturation.SaturationPoint{
			{Barcode: "CELL1", Reads: 1000, Saturation: 0.10},
			{Barcode: "CELL2", Reads: 2000, Saturation: 0.50},
			{Barcode: "CELL3", Reads: 5000, Saturation: 0.78},
		},
		FilteredCells:       3,
		FilteredReads:       8000,
		TotalReads:          10000,
		MeanReads:           2666.67,
		MeanSaturation:      0.46,
		GlobalSaturation:    0.625,
		FractionInRealCells: 0.8,
	}
}

func TestRenderWithFit(t *testing.T) {
	sum := testSummary()
	fit, err := saturation.FitMichaelisMenten(sum.Points)
	require.NoError(t, err)
	curve := fit.Curve(saturation.DefaultOpts)
	proj := saturation.Project(sum, saturation.DefaultOpts)

	path := filepath.Join(t.TempDir(), "saturation.png")
	require.NoError(t, Render(path, sum, &fit, &curve, &proj))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestRenderWithoutFit(t *testing.T) {
	// Fit failure: the figure still renders with the scatter and the
	// summary annotations, marking curve figures unavailable.
	path := filepath.Join(t.TempDir(), "saturation.png")
	require.NoError(t, Render(path, testSummary(), nil, nil, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
