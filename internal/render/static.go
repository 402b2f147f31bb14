package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/hospimap-cli/internal/aggregate"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
)

// ErrNothingToDraw is returned when a static view has no data.
var ErrNothingToDraw = errors.New("nothing to draw")

var (
	greyFill   = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	baseFill   = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	edgeColor  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	barColor   = color.RGBA{R: 0x15, G: 0x65, B: 0xc0, A: 0xff}
	focusColor = color.RGBA{R: 0xe3, G: 0x1a, B: 0x1c, A: 0xff}
)

// BarsPNG writes a horizontal bar chart of the counts, largest bar on top.
func BarsPNG(w io.Writer, title string, top []aggregate.CategoryCount) error {
	if len(top) == 0 {
		return ErrNothingToDraw
	}
	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i := range top {
		c := top[len(top)-1-i]
		values[i] = float64(c.Count)
		labels[i] = c.Value
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "N° establecimientos"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars, plotter.NewGrid())
	p.NominalY(labels...)
	return writePNG(p, w, 10*vg.Inch, 6*vg.Inch)
}

// ChoroplethPNG fills every area with a colour ramp on its count. Areas without
// data are grey.
func ChoroplethPNG(w io.Writer, title string, areas []geo.Area) error {
	if len(areas) == 0 {
		return ErrNothingToDraw
	}
	maxCount := 0
	for _, a := range areas {
		if a.Count > maxCount {
			maxCount = a.Count
		}
	}
	ramp := parseRamp(ylOrRd)
	p := mapPlot(title)
	for _, a := range areas {
		fill := color.Color(greyFill)
		if a.HasData {
			fill = rampColor(ramp, a.Count, maxCount)
		}
		if err := addArea(p, a, fill); err != nil {
			return err
		}
	}
	return writePNG(p, w, 8*vg.Inch, 10*vg.Inch)
}

// HighlightPNG draws base faintly and the highlighted areas in a solid colour on top.
func HighlightPNG(w io.Writer, title string, base, highlight []geo.Area) error {
	if len(base) == 0 && len(highlight) == 0 {
		return ErrNothingToDraw
	}
	p := mapPlot(title)
	for _, a := range base {
		if err := addArea(p, a, baseFill); err != nil {
			return err
		}
	}
	for _, a := range highlight {
		if err := addArea(p, a, focusColor); err != nil {
			return err
		}
	}
	return writePNG(p, w, 8*vg.Inch, 10*vg.Inch)
}

func mapPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.HideAxes()
	return p
}

func addArea(p *plot.Plot, a geo.Area, fill color.Color) error {
	rings := geo.Rings(a.Geometry)
	if len(rings) == 0 {
		return nil
	}
	xys := make([]plotter.XYer, 0, len(rings))
	for _, r := range rings {
		pts := make(plotter.XYs, len(r))
		for i, c := range r {
			pts[i] = plotter.XY{X: c[0], Y: c[1]}
		}
		xys = append(xys, pts)
	}
	poly, err := plotter.NewPolygon(xys...)
	if err != nil {
		return fmt.Errorf("area %q: %w", a.Name, err)
	}
	poly.Color = fill
	poly.LineStyle.Color = edgeColor
	poly.LineStyle.Width = vg.Points(0.2)
	p.Add(poly)
	return nil
}

func writePNG(p *plot.Plot, w io.Writer, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func parseRamp(hex []string) []color.Color {
	out := make([]color.Color, 0, len(hex))
	for _, h := range hex {
		v, err := strconv.ParseUint(h[1:], 16, 32)
		if err != nil {
			continue
		}
		out = append(out, color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff})
	}
	return out
}

func rampColor(ramp []color.Color, v, maxV int) color.Color {
	if maxV <= 0 {
		return ramp[0]
	}
	i := v * (len(ramp) - 1) / maxV
	return ramp[i]
}
