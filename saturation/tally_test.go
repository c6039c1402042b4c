package saturation

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(bc, umi string) TagPair {
	return TagPair{Barcode: bc, UMI: umi, HasBarcode: true, HasUMI: true}
}

func TestAddSkipsMissingTags(t *testing.T) {
	tally := NewTally()
	expect.EQ(t, tally.Add(TagPair{UMI: "AAAA", HasUMI: true}), false)
	expect.EQ(t, tally.Add(TagPair{Barcode: "ACGT", HasBarcode: true}), false)
	expect.EQ(t, tally.Add(TagPair{}), false)
	expect.EQ(t, tally.Add(pair("ACGT", "AAAA")), true)

	expect.EQ(t, tally.NumBarcodes(), 1)
	expect.EQ(t, tally.TotalReadsAll(), 1)
}

func TestTallyConservesReads(t *testing.T) {
	tally := NewTally()
	counted := 0
	pairs := []TagPair{
		pair("ACGT", "AAAA"),
		pair("ACGT", "AAAA"),
		pair("ACGT", "CCCC"),
		pair("TTTT", "AAAA"),
		{Barcode: "TTTT", HasBarcode: true}, // no UMI
		{UMI: "GGGG", HasUMI: true},         // no barcode
	}
	for _, p := range pairs {
		if tally.Add(p) {
			counted++
		}
	}
	expect.EQ(t, counted, 4)

	total := 0
	for _, bc := range tally.Barcodes() {
		total += tally.TotalReads(bc)
		expect.True(t, tally.UniqueUMIs(bc) <= tally.TotalReads(bc))
	}
	expect.EQ(t, total, counted)
	expect.EQ(t, tally.TotalReadsAll(), counted)

	expect.EQ(t, tally.TotalReads("ACGT"), 3)
	expect.EQ(t, tally.UniqueUMIs("ACGT"), 2)
	expect.EQ(t, tally.TotalReads("TTTT"), 1)
}

func TestMergeMatchesSingleBuilder(t *testing.T) {
	pairs := []TagPair{
		pair("ACGT", "AAAA"),
		pair("TTTT", "AAAA"),
		pair("ACGT", "AAAA"),
		pair("ACGT", "CCCC"),
		pair("TTTT", "GGGG"),
		pair("GGCC", "TTTT"),
	}

	whole := NewTally()
	for _, p := range pairs {
		whole.Add(p)
	}

	// Shard round-robin, then merge in reverse order.  The result must
	// not depend on sharding or merge order.
	shards := []*Tally{NewTally(), NewTally(), NewTally()}
	for i, p := range pairs {
		shards[i%len(shards)].Add(p)
	}
	merged := NewTally()
	for i := len(shards) - 1; i >= 0; i-- {
		merged.Merge(shards[i])
	}

	expect.EQ(t, merged.Barcodes(), whole.Barcodes())
	for _, bc := range whole.Barcodes() {
		expect.EQ(t, merged.TotalReads(bc), whole.TotalReads(bc))
		expect.EQ(t, merged.UniqueUMIs(bc), whole.UniqueUMIs(bc))
	}
	expect.EQ(t, merged.TotalReadsAll(), whole.TotalReadsAll())
}

func TestWriteTSV(t *testing.T) {
	tally := NewTally()
	tally.Add(pair("TTTT", "AAAA"))
	tally.Add(pair("ACGT", "CCCC"))
	tally.Add(pair("ACGT", "AAAA"))
	tally.Add(pair("ACGT", "AAAA"))

	path := filepath.Join(t.TempDir(), "tally.tsv")
	require.NoError(t, tally.WriteTSV(context.Background(), path))

	got, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	want := "cell_barcode\tUMI\tCount\n" +
		"ACGT\tAAAA\t2\n" +
		"ACGT\tCCCC\t1\n" +
		"TTTT\tAAAA\t1\n"
	assert.Equal(t, want, string(got))
}
