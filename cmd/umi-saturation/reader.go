package main

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"

	"github.com/MethodsDev/masseq-data-processing/barcode"
	"github.com/MethodsDev/masseq-data-processing/saturation"
)

var (
	cbTag = sam.Tag{'C', 'B'}
	xmTag = sam.Tag{'X', 'M'}
)

const batchSize = 4096

// tagPair extracts the cell-barcode and UMI aux tags from rec.  Either
// tag may be absent; absence is recorded in the pair, not an error.
func tagPair(rec *sam.Record) saturation.TagPair {
	var p saturation.TagPair
	if aux := rec.AuxFields.Get(cbTag); aux != nil {
		if s, ok := aux.Value().(string); ok {
			p.Barcode, p.HasBarcode = s, true
		}
	}
	if aux := rec.AuxFields.Get(xmTag); aux != nil {
		if s, ok := aux.Value().(string); ok {
			p.UMI, p.HasUMI = s, true
		}
	}
	return p
}

// applyWhitelist resolves p's barcode against the whitelist.  A barcode
// matching nothing demotes the pair to barcode-less so the tally skips
// it.
func applyWhitelist(p saturation.TagPair, wl *barcode.Whitelist) saturation.TagPair {
	if wl == nil || !p.HasBarcode {
		return p
	}
	matched, ok := wl.Match(p.Barcode)
	if !ok {
		p.Barcode, p.HasBarcode = "", false
		return p
	}
	p.Barcode = matched
	return p
}

// buildTally streams the BAM at path into a single tally.  Decoded tag
// pairs are fanned out in batches to parallelism shard tallies, which
// are merged once the stream is exhausted.  Shard assignment is
// arbitrary; tally accumulation is commutative so the result does not
// depend on it.
func buildTally(ctx context.Context, path string, wl *barcode.Whitelist, parallelism int) (*saturation.Tally, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't open BAM file:", path)
	}
	defer in.Close(ctx) // nolint: errcheck

	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(err, "couldn't read BAM header:", path)
	}
	defer reader.Close() // nolint: errcheck

	batches := make(chan []saturation.TagPair, parallelism)
	var readErr error
	var records int64
	go func() {
		defer close(batches)
		batch := make([]saturation.TagPair, 0, batchSize)
		for {
			rec, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				readErr = errors.E(err, "error reading BAM file:", path)
				break
			}
			records++
			// The whitelist cache is not safe for concurrent use, so
			// barcodes are resolved here on the single producer.
			batch = append(batch, applyWhitelist(tagPair(rec), wl))
			if len(batch) == batchSize {
				batches <- batch
				batch = make([]saturation.TagPair, 0, batchSize)
			}
		}
		if len(batch) > 0 {
			batches <- batch
		}
	}()

	shards := make([]*saturation.Tally, parallelism)
	counted := make([]int64, parallelism)
	err = traverse.Each(parallelism, func(shard int) error {
		tally := saturation.NewTally()
		for batch := range batches {
			for _, p := range batch {
				if tally.Add(p) {
					counted[shard]++
				}
			}
		}
		shards[shard] = tally
		return nil
	})
	if err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}

	tally := saturation.NewTally()
	var totalCounted int64
	for i, shard := range shards {
		tally.Merge(shard)
		totalCounted += counted[i]
	}
	log.Printf("tallied %d of %d reads (%d skipped: missing tag or unlisted barcode)",
		totalCounted, records, records-totalCounted)
	return tally, nil
}
