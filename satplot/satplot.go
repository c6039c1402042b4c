// Package satplot renders the sequencing-saturation figure: the
// per-cell saturation scatter, the trimmed fitted curve with its
// confidence band, guide lines for the mean depth, mean saturation and
// knee, and text annotations carrying the fitted and projected values.
// The numeric annotations are formatted from the same values the
// pipeline reports, so figure and report always agree.
package satplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/MethodsDev/masseq-data-processing/saturation"
)

var (
	dataColor   = color.RGBA{R: 0xcc, A: 0xff}
	fitColor    = color.RGBA{A: 0xff}
	bandColor   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x60}
	meanColor   = color.RGBA{R: 0xcc, A: 0xff}
	satColor    = color.RGBA{G: 0x99, A: 0xff}
	kneeColor   = color.RGBA{R: 0x80, B: 0x80, A: 0xff}
	dashPattern = []vg.Length{vg.Points(5), vg.Points(3)}
)

// Render writes the saturation figure for one sample to path (the
// format follows the file extension, typically .png).  fit, curve and
// proj may all be nil on fit failure; the figure then carries the data
// scatter and summary annotations only, with the curve-derived numbers
// marked unavailable instead of fabricated.
func Render(path string, sum saturation.Summary, fit *saturation.FitResult, curve *saturation.Curve, proj *saturation.Projection) error {
	p := plot.New()
	p.Title.Text = "Sequencing saturation for real cells"
	p.X.Label.Text = "Reads per cell"
	p.Y.Label.Text = "Sequencing saturation index"
	p.Legend.Top = true

	maxX, maxY := dataRange(sum)

	if curve != nil {
		band, err := plotter.NewPolygon(bandPolygon(curve))
		if err != nil {
			return err
		}
		band.Color = bandColor
		band.LineStyle.Color = bandColor
		p.Add(band)

		line, err := plotter.NewLine(curveXYs(curve.X, curve.Y))
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = fitColor
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Vmax = %.3f", fit.Vmax), line)
		p.Legend.Add(fmt.Sprintf("Km = %.1f", fit.Km), line)
	}

	scatter, err := plotter.NewScatter(pointXYs(sum))
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = dataColor
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("real cells", scatter)

	if err := addGuide(p, sum.MeanReads, maxY, meanColor,
		fmt.Sprintf("Mean reads per cell: %.1f", sum.MeanReads)); err != nil {
		return err
	}
	if err := addHGuide(p, sum.MeanSaturation, maxX, satColor,
		fmt.Sprintf("Avg saturation index: %.3f", sum.MeanSaturation)); err != nil {
		return err
	}
	if curve != nil && curve.HasKnee {
		if err := addGuide(p, curve.KneeX, maxY, kneeColor,
			fmt.Sprintf("Knee point: %.0f reads", curve.KneeX)); err != nil {
			return err
		}
	}

	if err := addAnnotations(p, sum, fit, curve, proj, maxX, maxY); err != nil {
		return err
	}
	return p.Save(12*vg.Inch, 8*vg.Inch, path)
}

func pointXYs(sum saturation.Summary) plotter.XYs {
	xys := make(plotter.XYs, len(sum.Points))
	for i, pt := range sum.Points {
		xys[i].X = float64(pt.Reads)
		xys[i].Y = pt.Saturation
	}
	return xys
}

func curveXYs(xs, ys []float64) plotter.XYs {
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i].X = xs[i]
		xys[i].Y = ys[i]
	}
	return xys
}

// bandPolygon closes the upper bound against the reversed lower bound.
func bandPolygon(curve *saturation.Curve) plotter.XYs {
	xys := make(plotter.XYs, 0, 2*len(curve.X))
	for i := range curve.X {
		xys = append(xys, plotter.XY{X: curve.X[i], Y: curve.Upper[i]})
	}
	for i := len(curve.X) - 1; i >= 0; i-- {
		xys = append(xys, plotter.XY{X: curve.X[i], Y: curve.Lower[i]})
	}
	return xys
}

func dataRange(sum saturation.Summary) (maxX, maxY float64) {
	for _, pt := range sum.Points {
		if float64(pt.Reads) > maxX {
			maxX = float64(pt.Reads)
		}
		if pt.Saturation > maxY {
			maxY = pt.Saturation
		}
	}
	// Degenerate ranges (no real cells) still need a drawable frame.
	if maxX == 0 {
		maxX = 1
	}
	if maxY == 0 {
		maxY = 1
	}
	return maxX, maxY
}

// addGuide draws a dashed vertical guide line at x.
func addGuide(p *plot.Plot, x, maxY float64, c color.Color, label string) error {
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: maxY}})
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Dashes = dashPattern
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// addHGuide draws a dashed horizontal guide line at y.
func addHGuide(p *plot.Plot, y, maxX float64, c color.Color, label string) error {
	line, err := plotter.NewLine(plotter.XYs{{X: 0, Y: y}, {X: maxX, Y: y}})
	if err != nil {
		return err
	}
	line.LineStyle.Color = c
	line.LineStyle.Dashes = dashPattern
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func addAnnotations(p *plot.Plot, sum saturation.Summary, fit *saturation.FitResult, curve *saturation.Curve, proj *saturation.Projection, maxX, maxY float64) error {
	lines := []string{
		fmt.Sprintf("Global saturation: %.3f", sum.GlobalSaturation),
		fmt.Sprintf("Mean reads per cell: %.1f", sum.MeanReads),
		fmt.Sprintf("Filtered cells: %d", sum.FilteredCells),
		fmt.Sprintf("Fraction filtered: %.1f%%", 100*sum.FractionInRealCells),
	}
	if fit != nil {
		rsq := "n/a"
		if fit.RSquaredOK {
			rsq = fmt.Sprintf("%.3f", fit.RSquared)
		}
		lines = append(lines,
			fmt.Sprintf("Vmax = %.3f ± %.3f", fit.Vmax, fit.VmaxStdErr),
			fmt.Sprintf("Km = %.1f ± %.1f", fit.Km, fit.KmStdErr),
			fmt.Sprintf("R² = %s", rsq))
	} else {
		lines = append(lines, "Curve fit unavailable")
	}
	if proj != nil {
		lines = append(lines,
			fmt.Sprintf("Extra reads needed per filtered cell: %.0f", proj.ExtraPerCell),
			fmt.Sprintf("Total extra for filtered cells: %.0f", proj.ExtraRealCells),
			fmt.Sprintf("Total extra sequencing required: %.0f", proj.TotalExtraRequired))
	} else {
		lines = append(lines, "Depth projection unavailable")
	}

	xys := make(plotter.XYs, len(lines))
	for i := range lines {
		xys[i].X = 0.02 * maxX
		xys[i].Y = maxY * (0.98 - 0.04*float64(i))
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines})
	if err != nil {
		return err
	}
	p.Add(labels)
	return nil
}
