package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/banshee-data/detlayers/internal/fsutil"
	"github.com/banshee-data/detlayers/internal/geometry"
	"github.com/banshee-data/detlayers/internal/scan"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var classColors = map[string]color.Color{
	ClassCompatible:   color.RGBA{G: 140, B: 60, A: 255},
	ClassCrack:        color.RGBA{R: 230, G: 140, A: 255},
	ClassIncompatible: color.RGBA{R: 200, A: 255},
}

var classOrder = []string{ClassCompatible, ClassCrack, ClassIncompatible}

// EnvelopePlot builds the r-z plot: one outline per layer and one scatter
// series per result class.
func EnvelopePlot(layers []geometry.NamedLayer, results []scan.SeedResult, o Options) (*plot.Plot, error) {
	unit := o.unit()
	p := plot.New()
	p.Title.Text = o.title()
	p.X.Label.Text = fmt.Sprintf("z (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("r (%s)", unit)

	colors := palette(len(layers))
	for i, l := range layers {
		env := Envelope(l, unit)
		xys := make(plotter.XYs, len(env))
		for j, pt := range env {
			xys[j] = plotter.XY{X: pt[0], Y: pt[1]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("layer %s outline: %w", l.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(l.Name, line)
	}

	byClass := make(map[string]plotter.XYs)
	for _, pt := range Points(results, unit) {
		byClass[pt.Class] = append(byClass[pt.Class], plotter.XY{X: pt.Z, Y: pt.R})
	}
	for _, class := range classOrder {
		xys := byClass[class]
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("%s points: %w", class, err)
		}
		sc.GlyphStyle.Color = classColors[class]
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add(class, sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WriteEnvelopePNG renders the envelope plot as PNG to w.
func WriteEnvelopePNG(w io.Writer, layers []geometry.NamedLayer, results []scan.SeedResult, o Options) error {
	p, err := EnvelopePlot(layers, results, o)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SaveEnvelopePNG writes the envelope plot to path on fsys.
func SaveEnvelopePNG(fsys fsutil.FileSystem, path string, layers []geometry.NamedLayer, results []scan.SeedResult, o Options) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteEnvelopePNG(f, layers, results, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
