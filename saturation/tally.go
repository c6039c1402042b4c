package saturation

import (
	"bufio"
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// TagPair is one read's cell-barcode/UMI observation.  HasBarcode and
// HasUMI record whether the corresponding aux tag was present on the
// read; a pair with either flag unset contributes nothing to a tally.
type TagPair struct {
	Barcode    string
	UMI        string
	HasBarcode bool
	HasUMI     bool
}

// Tally counts reads per (cell barcode, UMI) key.  Build one with
// NewTally and Add, or combine shard tallies with Merge.  Accumulation
// is commutative, so record order and shard boundaries do not affect
// the result.
type Tally struct {
	counts map[string]map[string]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: map[string]map[string]int{}}
}

// Add increments the count for p's (barcode, UMI) key.  A pair missing
// either tag is skipped, and Add reports whether the pair was counted.
func (t *Tally) Add(p TagPair) bool {
	if !p.HasBarcode || !p.HasUMI {
		return false
	}
	umis := t.counts[p.Barcode]
	if umis == nil {
		umis = map[string]int{}
		t.counts[p.Barcode] = umis
	}
	umis[p.UMI]++
	return true
}

// Merge adds other's counts into t, summing per (barcode, UMI) key.
func (t *Tally) Merge(other *Tally) {
	for bc, umis := range other.counts {
		existing := t.counts[bc]
		if existing == nil {
			existing = make(map[string]int, len(umis))
			t.counts[bc] = existing
		}
		for umi, n := range umis {
			existing[umi] += n
		}
	}
}

// TotalReads returns the number of counted reads for the given barcode.
func (t *Tally) TotalReads(barcode string) int {
	total := 0
	for _, n := range t.counts[barcode] {
		total += n
	}
	return total
}

// UniqueUMIs returns the number of distinct UMIs seen for the given
// barcode.
func (t *Tally) UniqueUMIs(barcode string) int {
	return len(t.counts[barcode])
}

// TotalReadsAll returns the number of counted reads across all
// barcodes, real cells and background alike.
func (t *Tally) TotalReadsAll() int {
	total := 0
	for bc := range t.counts {
		total += t.TotalReads(bc)
	}
	return total
}

// Barcodes returns all tallied barcodes in lexical order.
func (t *Tally) Barcodes() []string {
	barcodes := make([]string, 0, len(t.counts))
	for bc := range t.counts {
		barcodes = append(barcodes, bc)
	}
	sort.Strings(barcodes)
	return barcodes
}

// NumBarcodes returns the number of tallied barcodes.
func (t *Tally) NumBarcodes() int {
	return len(t.counts)
}

// WriteTSV writes the tally to path as a tab-separated table with
// header "cell_barcode UMI Count", one row per (barcode, UMI) key.
// Rows are sorted by barcode then UMI so the output is deterministic.
func (t *Tally) WriteTSV(ctx context.Context, path string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "couldn't create tally file:", path)
	}
	defer func() {
		if err2 := out.Close(ctx); err == nil && err2 != nil {
			err = err2
		}
	}()

	w := bufio.NewWriter(out.Writer(ctx))
	if _, err = w.WriteString("cell_barcode\tUMI\tCount\n"); err != nil {
		return errors.E(err, "error writing to tally file:", path)
	}
	for _, bc := range t.Barcodes() {
		umis := make([]string, 0, len(t.counts[bc]))
		for umi := range t.counts[bc] {
			umis = append(umis, umi)
		}
		sort.Strings(umis)
		for _, umi := range umis {
			if _, err = fmt.Fprintf(w, "%s\t%s\t%d\n", bc, umi, t.counts[bc][umi]); err != nil {
				return errors.E(err, "error writing to tally file:", path)
			}
		}
	}
	return w.Flush()
}
