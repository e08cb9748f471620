package plot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/histcmp/histcmp/internal/histogram"
)

// Canvas dimensions: the ratio panel shares the full width below the
// main panel.
const (
	width  = 16 * vg.Centimeter
	height = 12 * vg.Centimeter
)

// Colors follow the matplotlib default cycle so plots look familiar to
// people coming from Python tooling.
var (
	colorMonitored = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorReference = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	colorUnity     = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

// Options configures a comparison plot.
type Options struct {
	// LabelMonitored and LabelReference are the legend entries.
	LabelMonitored string
	LabelReference string
}

// Renderer draws comparison plots for histogram pairs.
type Renderer struct {
	opts Options
}

// NewRenderer creates a plot renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.LabelMonitored == "" {
		opts.LabelMonitored = "monitored"
	}
	if opts.LabelReference == "" {
		opts.LabelReference = "reference"
	}
	return &Renderer{opts: opts}
}

// SVG renders the comparison plot for a histogram pair as SVG bytes.
func (r *Renderer) SVG(mon, ref *histogram.H1) ([]byte, error) {
	var buf bytes.Buffer
	c := vgsvg.New(width, height)
	if err := r.draw(draw.New(c), mon, ref); err != nil {
		return nil, err
	}
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI renders the comparison plot as an SVG data URI suitable for an
// <img> element in the HTML report.
func (r *Renderer) DataURI(mon, ref *histogram.H1) (string, error) {
	svg, err := r.SVG(mon, ref)
	if err != nil {
		return "", err
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg), nil
}

// Write renders the comparison plot in the given format (svg, png or pdf)
// to w.
func (r *Renderer) Write(w io.Writer, mon, ref *histogram.H1, format string) error {
	switch format {
	case "svg":
		svg, err := r.SVG(mon, ref)
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	case "png":
		c := vgimg.New(width, height)
		if err := r.draw(draw.New(c), mon, ref); err != nil {
			return err
		}
		png := vgimg.PngCanvas{Canvas: c}
		_, err := png.WriteTo(w)
		return err
	case "pdf":
		c := vgpdf.New(width, height)
		if err := r.draw(draw.New(c), mon, ref); err != nil {
			return err
		}
		_, err := c.WriteTo(w)
		return err
	default:
		return fmt.Errorf("unsupported plot format %q", format)
	}
}

// draw renders the stacked main and ratio panels onto a canvas. When the
// binnings differ no ratio exists, and the overlay gets the full canvas.
func (r *Renderer) draw(dc draw.Canvas, mon, ref *histogram.H1) error {
	main, err := r.mainPanel(mon, ref)
	if err != nil {
		return err
	}

	ratio, err := r.ratioPanel(mon, ref)
	if err != nil || ratio == nil {
		main.Draw(dc)
		return nil
	}

	canvases := plot.Align([][]*plot.Plot{{main}, {ratio}}, draw.Tiles{Rows: 2, Cols: 1}, dc)
	main.Draw(canvases[0][0])
	ratio.Draw(canvases[1][0])
	return nil
}

// mainPanel builds the overlay of both histograms.
func (r *Renderer) mainPanel(mon, ref *histogram.H1) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = mon.Title
	if p.Title.Text == "" {
		p.Title.Text = mon.Name
	}
	p.Y.Label.Text = "entries"
	p.Legend.Top = true

	refLine, err := addHistogram(p, ref, colorReference)
	if err != nil {
		return nil, err
	}
	monLine, err := addHistogram(p, mon, colorMonitored)
	if err != nil {
		return nil, err
	}
	p.Legend.Add(r.opts.LabelReference, refLine)
	p.Legend.Add(r.opts.LabelMonitored, monLine)
	return p, nil
}

// ratioPanel builds the monitored/reference panel, or returns nil when no
// ratio can be formed.
func (r *Renderer) ratioPanel(mon, ref *histogram.H1) (*plot.Plot, error) {
	ratio, err := mon.Ratio(ref)
	if err != nil {
		return nil, err
	}

	pts := binPoints(ratio)
	if pts.Len() == 0 {
		return nil, nil
	}

	p := plot.New()
	p.X.Label.Text = mon.Name
	p.Y.Label.Text = r.opts.LabelMonitored + " / " + r.opts.LabelReference

	unity := plotter.XYs{
		{X: ratio.Edges[0], Y: 1},
		{X: ratio.Edges[len(ratio.Edges)-1], Y: 1},
	}
	unityLine, err := plotter.NewLine(unity)
	if err != nil {
		return nil, err
	}
	unityLine.Color = colorUnity
	unityLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(unityLine)

	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, err
	}
	bars.Color = colorMonitored
	p.Add(bars)

	scatter, err := plotter.NewScatter(pts.XYs)
	if err != nil {
		return nil, err
	}
	scatter.Color = colorMonitored
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)

	return p, nil
}

// addHistogram draws the step outline of a histogram with error bars on
// the bin centers and returns the outline for the legend.
func addHistogram(p *plot.Plot, h *histogram.H1, c color.Color) (*plotter.Line, error) {
	steps := make(plotter.XYs, 0, 2*h.Nbins())
	for i := 0; i < h.Nbins(); i++ {
		steps = append(steps,
			plotter.XY{X: h.Edges[i], Y: h.Contents[i]},
			plotter.XY{X: h.Edges[i+1], Y: h.Contents[i]},
		)
	}
	line, err := plotter.NewLine(steps)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)

	bars, err := plotter.NewYErrorBars(binPoints(h))
	if err != nil {
		return nil, err
	}
	bars.Color = c
	p.Add(bars)

	return line, nil
}

// binData carries bin centers, contents and symmetric errors for the
// plotter error-bar interfaces.
type binData struct {
	XYs  plotter.XYs
	errs []float64
}

func (b binData) Len() int                    { return len(b.XYs) }
func (b binData) XY(i int) (float64, float64) { return b.XYs[i].X, b.XYs[i].Y }
func (b binData) YError(i int) (float64, float64) {
	return b.errs[i], b.errs[i]
}

// binPoints collects the finite bins of a histogram as plot points.
func binPoints(h *histogram.H1) binData {
	var pts binData
	for i := 0; i < h.Nbins(); i++ {
		v := h.Contents[i]
		if math.IsNaN(v) { // zero-denominator ratio bins
			continue
		}
		pts.XYs = append(pts.XYs, plotter.XY{X: h.BinCenter(i), Y: v})
		pts.errs = append(pts.errs, h.BinError(i))
	}
	return pts
}
