package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/detlayers/internal/fsutil"
	"github.com/banshee-data/detlayers/internal/geometry"
	"github.com/banshee-data/detlayers/internal/scan"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an HTML page with the r-z scatter of propagated states
// and a bar chart of candidate modules per layer.
func WriteHTML(w io.Writer, layers []geometry.NamedLayer, results []scan.SeedResult, o Options) error {
	unit := o.unit()
	pts := Points(results, unit)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.title(), Width: "1000px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: o.title(), Subtitle: fmt.Sprintf("seeds=%d layers=%d points=%d", len(results), len(layers), len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("z (%s)", unit), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("r (%s)", unit), NameLocation: "middle", NameGap: 30}),
	)

	colors := palette(len(layers))
	for i, l := range layers {
		env := Envelope(l, unit)
		data := make([]opts.ScatterData, 0, len(env))
		for _, c := range env {
			data = append(data, opts.ScatterData{Value: []interface{}{c[0], c[1]}})
		}
		scatter.AddSeries(l.Name, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(colors[i])}),
		)
	}

	byClass := make(map[string][]opts.ScatterData)
	for _, p := range pts {
		byClass[p.Class] = append(byClass[p.Class], opts.ScatterData{
			Name:  fmt.Sprintf("%s @ %s", p.Seed, p.Layer),
			Value: []interface{}{p.Z, p.R},
		})
	}
	for _, class := range classOrder {
		if len(byClass[class]) == 0 {
			continue
		}
		scatter.AddSeries(class, byClass[class],
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(classColors[class])}),
		)
	}

	names := make([]string, 0, len(layers))
	counts := make([]int, len(layers))
	index := make(map[string]int, len(layers))
	for i, l := range layers {
		names = append(names, l.Name)
		index[l.Name] = i
	}
	for _, sr := range results {
		for _, lr := range sr.Layers {
			if i, ok := index[lr.Layer]; ok {
				counts[i] += lr.CandidateCount()
			}
		}
	}
	bars := make([]opts.BarData, 0, len(counts))
	for _, n := range counts {
		bars = append(bars, opts.BarData{Value: n})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Candidate modules per layer"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("candidates", bars,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(scatter, bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// SaveHTML writes the HTML report to path on fsys.
func SaveHTML(fsys fsutil.FileSystem, path string, layers []geometry.NamedLayer, results []scan.SeedResult, o Options) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteHTML(f, layers, results, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
