package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/MethodsDev/masseq-data-processing/barcode"
	"github.com/MethodsDev/masseq-data-processing/satplot"
	"github.com/MethodsDev/masseq-data-processing/saturation"
)

var (
	bamPath     = flag.String("bam", "", "Input BAM file path (required)")
	tsvPath     = flag.String("tsv-out", "", "Output TSV file path for per-(barcode, UMI) counts (required)")
	bcstatsPath = flag.String("bcstats", "", "Barcode stats file path with the cell classification (required)")
	plotPath    = flag.String("plot", "", "Output image file path for the saturation plot (required)")

	targetDepth     = flag.Float64("target-depth", saturation.DefaultOpts.TargetDepth, "Desired reads per real cell for the extra-sequencing projection")
	plateauFraction = flag.Float64("plateau-fraction", saturation.DefaultOpts.PlateauFraction, "Fraction of the fitted asymptote that defines the knee")
	gridPoints      = flag.Int("grid-points", saturation.DefaultOpts.GridPoints, "Number of points on the fitted-curve evaluation grid")
	cellLabel       = flag.String("cell-label", saturation.DefaultOpts.CellLabel, "Classification value that marks a real cell (exact match)")
	parallelism     = flag.Int("parallelism", 0, "Number of tally shards to build in parallel; 0 = runtime.NumCPU()")

	whitelistPath  = flag.String("whitelist", "", "Optional barcode whitelist (one barcode per line); reads whose CB matches no entry are ignored")
	whitelistEdits = flag.Int("whitelist-max-edits", 0, "Maximum edit distance when snapping a barcode to the whitelist; 0 = exact and reverse-complement matches only")
)

func usage() {
	fmt.Printf("Usage: %s -bam PATH -tsv-out PATH -bcstats PATH -plot PATH [OPTIONS]\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	for name, value := range map[string]string{
		"bam":     *bamPath,
		"tsv-out": *tsvPath,
		"bcstats": *bcstatsPath,
		"plot":    *plotPath,
	} {
		if value == "" {
			log.Fatalf("missing required flag -%s", name)
		}
	}
	opts := saturation.Opts{
		CellLabel:       *cellLabel,
		PlateauFraction: *plateauFraction,
		TargetDepth:     *targetDepth,
		GridPoints:      *gridPoints,
	}
	nShards := *parallelism
	if nShards <= 0 {
		nShards = runtime.NumCPU()
	}

	ctx := vcontext.Background()
	if err := run(ctx, opts, nShards); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, opts saturation.Opts, nShards int) error {
	var wl *barcode.Whitelist
	if *whitelistPath != "" {
		var err error
		wl, err = barcode.Read(ctx, *whitelistPath, *whitelistEdits)
		if err != nil {
			return err
		}
		log.Printf("loaded %d whitelist barcodes from %s", wl.Len(), *whitelistPath)
	}

	tally, err := buildTally(ctx, *bamPath, wl, nShards)
	if err != nil {
		return err
	}
	if err := tally.WriteTSV(ctx, *tsvPath); err != nil {
		return err
	}
	log.Printf("wrote UMI counts for %d barcodes to %s", tally.NumBarcodes(), *tsvPath)

	classification, err := saturation.ReadClassification(ctx, *bcstatsPath)
	if err != nil {
		return err
	}
	realCells := classification.RealCells(tally.Barcodes(), opts.CellLabel)
	sum := saturation.Summarize(tally, realCells)
	log.Printf("summary: %s", sum)
	if sum.EstimatedLibrarySize > 0 {
		log.Printf("estimated library size: %d molecules", sum.EstimatedLibrarySize)
	}

	// A fit failure must not discard the tally or the summary above:
	// the plot is still rendered, with curve-derived figures marked
	// unavailable.
	fit, err := saturation.FitMichaelisMenten(sum.Points)
	if err != nil {
		log.Error.Printf("curve fit skipped: %v", err)
		return satplot.Render(*plotPath, sum, nil, nil, nil)
	}
	curve := fit.Curve(opts)
	if curve.HasKnee {
		log.Printf("fit: Vmax=%.3f±%.3f Km=%.1f±%.1f knee=%.0f reads", fit.Vmax, fit.VmaxStdErr, fit.Km, fit.KmStdErr, curve.KneeX)
	} else {
		log.Printf("fit: Vmax=%.3f±%.3f Km=%.1f±%.1f (plateau not reached in observed range)", fit.Vmax, fit.VmaxStdErr, fit.Km, fit.KmStdErr)
	}
	proj := saturation.Project(sum, opts)
	log.Printf("projection to %.0f reads/cell: %.0f per cell, %.0f for real cells, %.0f total", proj.TargetDepth, proj.ExtraPerCell, proj.ExtraRealCells, proj.TotalExtraRequired)

	return satplot.Render(*plotPath, sum, &fit, &curve, &proj)
}
