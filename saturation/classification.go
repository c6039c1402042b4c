package saturation

import (
	"bufio"
	"context"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

const (
	barcodeColumn = "#BarcodeSequence"
	labelColumn   = "RealCell"
)

// Classification maps a cell barcode to its classifier label, as read
// from a barcode-stats table.
type Classification map[string]string

// ReadClassification loads a tab-separated barcode-stats table.  The
// first row is a header naming, among others, the barcode-sequence
// column and the categorical cell-call column; other columns are
// ignored.  Rows with an empty barcode are skipped.
func ReadClassification(ctx context.Context, path string) (Classification, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't open barcode stats file:", path)
	}
	defer in.Close(ctx) // nolint: errcheck

	scanner := bufio.NewScanner(in.Reader(ctx))
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.E(err, "error reading barcode stats file:", path)
		}
		return nil, errors.E("barcode stats file is empty:", path)
	}
	header := strings.Split(scanner.Text(), "\t")
	barcodeCol, labelCol := -1, -1
	for i, name := range header {
		switch name {
		case barcodeColumn:
			barcodeCol = i
		case labelColumn:
			labelCol = i
		}
	}
	if barcodeCol < 0 || labelCol < 0 {
		return nil, errors.E("barcode stats file", path, "is missing column",
			barcodeColumn, "or", labelColumn)
	}

	classification := Classification{}
	skipped := 0
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if barcodeCol >= len(fields) || labelCol >= len(fields) || fields[barcodeCol] == "" {
			skipped++
			continue
		}
		classification[fields[barcodeCol]] = fields[labelCol]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "error reading barcode stats file:", path)
	}
	if skipped > 0 {
		log.Printf("skipped %d malformed rows in %s", skipped, path)
	}
	return classification, nil
}

// RealCells returns the subset of candidates whose classification label
// equals cellLabel exactly.  Candidates absent from the classification
// are treated as background and excluded.  Input order is preserved.
func (c Classification) RealCells(candidates []string, cellLabel string) []string {
	real := make([]string, 0, len(candidates))
	for _, bc := range candidates {
		if c[bc] == cellLabel {
			real = append(real, bc)
		}
	}
	return real
}
