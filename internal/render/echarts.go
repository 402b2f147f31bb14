// Package render draws the dashboard views: interactive HTML with go-echarts and
// static PNG with gonum/plot.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/hospimap-cli/internal/aggregate"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
)

// Colors of the proximity markers and the choropleth ramp.
const (
	colorHigh   = "#2e7d32"
	colorLow    = "#c62828"
	colorNoData = "#bdbdbd"
	colorPoint  = "#1565c0"
)

var ylOrRd = []string{"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"}

// Marker is one establishment drawn on the points map.
type Marker struct {
	Lat     float64
	Lng     float64
	Title   string
	Details []string
}

// TopBar renders the Top-N distribution as a horizontal bar chart, largest bar on top.
func TopBar(column string, top []aggregate.CategoryCount) *charts.Bar {
	labels := make([]string, len(top))
	data := make([]opts.BarData, len(top))
	// category axes grow upwards, so feed ascending counts
	for i := range top {
		c := top[len(top)-1-i]
		labels[i] = c.Value
		data[i] = opts.BarData{Value: c.Count, Name: c.Value}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Distribución (Top 10)", Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Distribución", Subtitle: capitalize(column)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "N° establecimientos", NameLocation: "middle", NameGap: 25}),
	)
	bar.SetXAxis(labels).
		AddSeries("conteo", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}))
	bar.XYReversal()
	return bar
}

// PointMap renders establishments as a lon/lat scatter.
func PointMap(markers []Marker) *charts.Scatter {
	data := make([]opts.ScatterData, len(markers))
	b := newBounds()
	for i, m := range markers {
		name := m.Title
		if len(m.Details) > 0 {
			name += " · " + strings.Join(m.Details, " · ")
		}
		data[i] = opts.ScatterData{Name: name, Value: []interface{}{m.Lng, m.Lat}}
		b.add(m.Lng, m.Lat)
	}
	sc := geoScatter("Mapa de establecimientos", fmt.Sprintf("%d establecimientos", len(markers)), b)
	sc.AddSeries("establecimientos", data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPoint}))
	return sc
}

// ChoroplethMap colours each area centroid by its hospital count. Areas without
// matching rows are kept and drawn grey.
func ChoroplethMap(areas []geo.Area) *charts.Scatter {
	var withData, noData []opts.ScatterData
	b := newBounds()
	maxCount := 0
	for _, a := range areas {
		lat, lng := a.Centroid.Lat.Degrees(), a.Centroid.Lng.Degrees()
		b.add(lng, lat)
		if !a.HasData {
			noData = append(noData, opts.ScatterData{Name: a.Name + ": sin datos", Value: []interface{}{lng, lat}})
			continue
		}
		if a.Count > maxCount {
			maxCount = a.Count
		}
		withData = append(withData, opts.ScatterData{Name: fmt.Sprintf("%s: %d", a.Name, a.Count), Value: []interface{}{lng, lat, a.Count}})
	}
	if maxCount == 0 {
		maxCount = 1
	}
	sc := geoScatter("Número de hospitales por distrito", fmt.Sprintf("%d distritos", len(areas)), b)
	sc.SetGlobalOptions(charts.WithVisualMapOpts(opts.VisualMap{
		Show:       opts.Bool(true),
		Calculable: opts.Bool(true),
		Min:        0,
		Max:        float32(maxCount),
		Dimension:  "2",
		InRange:    &opts.VisualMapInRange{Color: ylOrRd},
	}))
	sc.AddSeries("hospitales", withData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9}))
	sc.AddSeries("sin datos", noData,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorNoData}))
	return sc
}

// ProximityMap marks the highest density area of each group in green and the lowest in red.
func ProximityMap(extremes []geo.Extreme, radius float64) *charts.Scatter {
	var high, low []opts.ScatterData
	b := newBounds()
	for _, e := range extremes {
		for _, pick := range []struct {
			a     geo.Area
			label string
			dst   *[]opts.ScatterData
		}{
			{e.Max, "Alta densidad", &high},
			{e.Min, "Baja densidad", &low},
		} {
			lat, lng := pick.a.Centroid.Lat.Degrees(), pick.a.Centroid.Lng.Degrees()
			b.add(lng, lat)
			*pick.dst = append(*pick.dst, opts.ScatterData{
				Name:  fmt.Sprintf("%s - %s: %d (%s)", e.Group, pick.label, pick.a.Density, pick.a.Name),
				Value: []interface{}{lng, lat, pick.a.Density},
			})
		}
	}
	sub := fmt.Sprintf("radio %.0f km", radius/1000)
	sc := geoScatter("Proximidad: densidad de hospitales", sub, b)
	sc.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}))
	sc.AddSeries("alta densidad", high,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 18}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHigh}))
	sc.AddSeries("baja densidad", low,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 18}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorLow}))
	return sc
}

// WritePage renders the charts into one HTML document.
func WritePage(w io.Writer, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = "Hospitales del Perú"
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func geoScatter(title, subtitle string, b bounds) *charts.Scatter {
	minX, maxX, minY, maxY := b.padded()
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minX, Max: maxX, Name: "Lon", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minY, Max: maxY, Name: "Lat", NameLocation: "middle", NameGap: 30}),
	)
	return sc
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func newBounds() bounds {
	return bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
}

func (b *bounds) add(x, y float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// padded returns rounded axis limits with a margin. Empty bounds cover Peru.
func (b bounds) padded() (minX, maxX, minY, maxY float64) {
	if math.IsInf(b.minX, 0) {
		return -82, -68, -19, 0
	}
	pad := math.Max(0.1, 0.05*math.Max(b.maxX-b.minX, b.maxY-b.minY))
	round := func(v float64) float64 { return math.Round(v*100) / 100 }
	return round(b.minX - pad), round(b.maxX + pad), round(b.minY - pad), round(b.maxY + pad)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
