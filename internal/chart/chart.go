// Package chart draws the histograms and category bar charts requested by
// hypothesis tests, using gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/utils"
)

// Renderer writes charts into Dir. Format is png (default) or svg; Width and
// Height are in inches.
type Renderer struct {
	Dir    string
	Format string
	Width  float64
	Height float64
}

var _ hypothesis.Charter = (*Renderer)(nil)

// Histogram draws every series over shared bins so overlays line up.
func (r *Renderer) Histogram(spec hypothesis.HistogramSpec) (string, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return "", errors.New("histogram has no values")
	}
	bins := spec.Bins
	if bins <= 0 {
		bins = hypothesis.DefaultBins
	}
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = "count"
	for i, s := range spec.Series {
		h := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, bins),
			Width:     width,
			FillColor: fade(plotutil.Color(i), 0xb0),
			LineStyle: plotter.DefaultLineStyle,
		}
		h.LineStyle.Color = color.White
		for b := range h.Bins {
			h.Bins[b].Min = lo + float64(b)*width
			h.Bins[b].Max = lo + float64(b+1)*width
		}
		for _, v := range s.Values {
			b := int((v - lo) / width)
			if b >= bins {
				b = bins - 1
			}
			h.Bins[b].Weight++
		}
		p.Add(h)
		if len(spec.Series) > 1 {
			p.Legend.Add(s.Label, h)
		}
	}
	return r.save(p, spec.Title)
}

// CategoryBars draws one bar group per category with a bar per series.
func (r *Renderer) CategoryBars(spec hypothesis.BarSpec) (string, error) {
	if len(spec.Categories) == 0 || len(spec.Series) == 0 {
		return "", errors.New("bar chart has no data")
	}
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.Norm
	barWidth := vg.Points(40 / float64(len(spec.Series)))
	n := float64(len(spec.Series))
	for i, s := range spec.Series {
		bc, err := plotter.NewBarChart(plotter.Values(s.Values), barWidth)
		if err != nil {
			return "", fmt.Errorf("bar series %s: %w", s.Label, err)
		}
		bc.Color = plotutil.Color(i)
		bc.LineStyle.Width = 0
		bc.Offset = vg.Length(float64(i)-(n-1)/2) * barWidth
		p.Add(bc)
		if len(spec.Series) > 1 {
			p.Legend.Add(s.Label, bc)
		}
	}
	p.Legend.Top = true
	p.NominalX(spec.Categories...)
	return r.save(p, spec.Title)
}

func (r *Renderer) save(p *plot.Plot, title string) (string, error) {
	format := strings.ToLower(r.Format)
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "svg" {
		return "", fmt.Errorf("unsupported chart format: %s (use png|svg)", r.Format)
	}
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	w, h := r.Width, r.Height
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 5
	}
	path := filepath.Join(dir, Slug(title)+"."+format)
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}

// Slug lowercases s and replaces runs of non-alphanumerics with a dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "chart"
	}
	return out
}

func fade(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
