// Package barcode matches observed cell barcodes against a whitelist of
// known barcode sequences, for example the cell barcodes called from a
// matched short-read run.  Matching tries the barcode as observed, then
// its reverse complement, then optionally snaps to the unique nearest
// whitelist entry within a bounded edit distance.
package barcode

import (
	"bufio"
	"context"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

var complements = map[rune]rune{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c', 'n': 'n',
}

// ReverseComplement returns the reverse complement of seq.  Bases
// without a defined complement map to 'N'.
func ReverseComplement(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	runes := []rune(seq)
	for i := len(runes) - 1; i >= 0; i-- {
		c, ok := complements[runes[i]]
		if !ok {
			c = 'N'
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Whitelist is a set of known barcode sequences.
type Whitelist struct {
	entries  []string
	exact    map[string]bool
	maxEdits int

	// snapped caches Match results for barcodes that needed more than
	// an exact lookup.
	snapped map[string]string
}

// New builds a whitelist from the given barcodes.  maxEdits bounds the
// edit distance used when snapping an unlisted barcode to its nearest
// entry; 0 disables snapping.
func New(barcodes []string, maxEdits int) *Whitelist {
	w := &Whitelist{
		exact:    make(map[string]bool, len(barcodes)),
		maxEdits: maxEdits,
		snapped:  map[string]string{},
	}
	for _, bc := range barcodes {
		if bc == "" || w.exact[bc] {
			continue
		}
		w.exact[bc] = true
		w.entries = append(w.entries, bc)
	}
	return w
}

// Read loads a whitelist from a file with one barcode per line.
func Read(ctx context.Context, path string, maxEdits int) (*Whitelist, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't open barcode whitelist:", path)
	}
	defer in.Close(ctx) // nolint: errcheck

	var barcodes []string
	scanner := bufio.NewScanner(in.Reader(ctx))
	for scanner.Scan() {
		if bc := strings.TrimSpace(scanner.Text()); bc != "" {
			barcodes = append(barcodes, bc)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "error reading barcode whitelist:", path)
	}
	return New(barcodes, maxEdits), nil
}

// Len returns the number of whitelist entries.
func (w *Whitelist) Len() int { return len(w.entries) }

// Match resolves an observed barcode to a whitelist entry.  It returns
// the matched entry and true, or "" and false when the barcode matches
// nothing.  A barcode within maxEdits of exactly one nearest entry
// snaps to that entry; ties do not snap.
func (w *Whitelist) Match(observed string) (string, bool) {
	if w.exact[observed] {
		return observed, true
	}
	if rc := ReverseComplement(observed); w.exact[rc] {
		return rc, true
	}
	if w.maxEdits == 0 {
		return "", false
	}
	if hit, ok := w.snapped[observed]; ok {
		return hit, hit != ""
	}
	best, bestEdits, ties := "", w.maxEdits+1, 0
	for _, entry := range w.entries {
		edits := matchr.Levenshtein(observed, entry)
		switch {
		case edits < bestEdits:
			best, bestEdits, ties = entry, edits, 1
		case edits == bestEdits:
			ties++
		}
	}
	if ties != 1 {
		best = ""
	}
	w.snapped[observed] = best
	return best, best != ""
}
