package saturation

import (
	"fmt"
)

// SaturationPoint is one real cell's read depth paired with its
// duplication level: saturation = 1 - unique/total, or 0 for a cell
// with no counted reads.
type SaturationPoint struct {
	Barcode    string
	Reads      int
	Saturation float64
}

// Summary holds the per-cell saturation points and the aggregate
// duplication statistics for one sample.
type Summary struct {
	// Points has one entry per real cell, in realCells order.
	Points []SaturationPoint

	// FilteredCells is the number of real cells.
	FilteredCells int
	// FilteredReads is the number of counted reads in real cells.
	FilteredReads int
	// FilteredUnique is the number of distinct (cell, UMI) molecules in
	// real cells.
	FilteredUnique int
	// TotalReads is the number of counted reads across all tallied
	// barcodes, including background.
	TotalReads int

	// MeanReads is the arithmetic mean of per-cell read totals.
	MeanReads float64
	// MeanSaturation is the arithmetic mean of per-cell saturation
	// indices.  It is not interchangeable with GlobalSaturation.
	MeanSaturation float64
	// GlobalSaturation is 1 - (sum of unique)/(sum of total) over real
	// cells, computed from the aggregated sums.
	GlobalSaturation float64
	// FractionInRealCells is FilteredReads/TotalReads, the share of the
	// library that lands in real cells.
	FractionInRealCells float64

	// EstimatedLibrarySize is the Lander-Waterman estimate of distinct
	// molecules in the real-cell library, or 0 when no duplicates were
	// observed.
	EstimatedLibrarySize uint64
}

// Summarize computes per-cell saturation points and aggregate metrics
// for the given real cells.  All divide-by-zero cases (a cell with no
// reads, an empty cell set, an empty tally) yield 0 rather than an
// error.
func Summarize(t *Tally, realCells []string) Summary {
	s := Summary{
		Points:        make([]SaturationPoint, 0, len(realCells)),
		FilteredCells: len(realCells),
		TotalReads:    t.TotalReadsAll(),
	}

	var sumSaturation float64
	for _, bc := range realCells {
		total := t.TotalReads(bc)
		unique := t.UniqueUMIs(bc)
		saturation := 0.0
		if total > 0 {
			saturation = 1 - float64(unique)/float64(total)
		}
		s.Points = append(s.Points, SaturationPoint{Barcode: bc, Reads: total, Saturation: saturation})
		s.FilteredReads += total
		s.FilteredUnique += unique
		sumSaturation += saturation
	}

	if len(realCells) > 0 {
		s.MeanReads = float64(s.FilteredReads) / float64(len(realCells))
		s.MeanSaturation = sumSaturation / float64(len(realCells))
	}
	if s.FilteredReads > 0 {
		s.GlobalSaturation = 1 - float64(s.FilteredUnique)/float64(s.FilteredReads)
	}
	if s.TotalReads > 0 {
		s.FractionInRealCells = float64(s.FilteredReads) / float64(s.TotalReads)
	}
	if size, err := estimateLibrarySize(uint64(s.FilteredReads), uint64(s.FilteredUnique)); err == nil {
		s.EstimatedLibrarySize = size
	}
	return s
}

// String returns a one-line report of the aggregate metrics.
func (s Summary) String() string {
	return fmt.Sprintf("cells=%d mean_reads=%.1f mean_saturation=%.3f global_saturation=%.3f fraction_in_cells=%.3f",
		s.FilteredCells, s.MeanReads, s.MeanSaturation, s.GlobalSaturation, s.FractionInRealCells)
}
