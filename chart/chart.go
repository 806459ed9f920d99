/*
Copyright © 2019 the WCDM authors.
This file is part of WCDM.

WCDM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WCDM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WCDM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package chart draws the history of a diffusion simulation.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/spatialmodel/wcdm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default figure dimensions.
const (
	Width  = 11 * vg.Inch
	Height = 4 * vg.Inch
)

// TimeSeries returns one plot per patch showing the amount of compound
// in that patch at each snapshot. All plots share the same y range and
// include a line at zero.
func TimeSeries(r *wcdm.Snapshots) ([]*plot.Plot, error) {
	if r.Len() == 0 || len(r.Names) == 0 {
		return nil, fmt.Errorf("chart: no snapshots to plot")
	}
	ymin, ymax := 0., 0.
	for _, a := range r.Amounts {
		ymin = math.Min(ymin, floats.Min(a))
		ymax = math.Max(ymax, floats.Max(a))
	}
	if ymin == ymax {
		ymax = ymin + 1
	}

	plots := make([]*plot.Plot, len(r.Names))
	for i, name := range r.Names {
		p, err := plot.New()
		if err != nil {
			return nil, err
		}
		p.Title.Text = fmt.Sprintf("%s level in patch %s", r.CompoundNames[i], name)
		p.X.Label.Text = "Step"
		p.Y.Label.Text = "Amount"

		series := r.Series(i)
		xy := make(plotter.XYs, len(series))
		for j, v := range series {
			xy[j].X = float64(j)
			xy[j].Y = v
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return nil, fmt.Errorf("chart: patch %s: %v", name, err)
		}
		l.Color = plotutil.Color(i)

		zero := plotter.NewFunction(func(float64) float64 { return 0 })
		zero.Color = color.Black

		p.Add(zero, l)
		p.Y.Min, p.Y.Max = ymin, ymax
		plots[i] = p
	}
	return plots, nil
}

// Repartition returns two stacked bar charts: the amount of compound in
// each patch at each snapshot, and the share of the total held by each
// patch. The shares chart carries the legend.
func Repartition(r *wcdm.Snapshots, barWidth vg.Length) (amounts, shares *plot.Plot, err error) {
	if r.Len() == 0 || len(r.Names) == 0 {
		return nil, nil, fmt.Errorf("chart: no snapshots to plot")
	}
	compound := r.CompoundNames[0]

	labels := make([]string, r.Len())
	for i := range labels {
		labels[i] = fmt.Sprint(i)
	}

	amounts, err = stackedBars(r.Amounts, r.Names, barWidth, false)
	if err != nil {
		return nil, nil, err
	}
	amounts.Title.Text = fmt.Sprintf("Amount of %s over time", compound)
	amounts.Y.Label.Text = fmt.Sprintf("%s amount", compound)
	amounts.X.Label.Text = "Step"
	amounts.NominalX(labels...)

	shares, err = stackedBars(r.Shares(), r.Names, barWidth, true)
	if err != nil {
		return nil, nil, err
	}
	shares.Title.Text = fmt.Sprintf("Repartition of %s over time", compound)
	shares.Y.Label.Text = fmt.Sprintf("Fraction of total %s", compound)
	shares.X.Label.Text = "Step"
	shares.NominalX(labels...)
	shares.Legend.Top = true
	shares.Legend.Left = false
	return amounts, shares, nil
}

// stackedBars draws one bar chart per patch, each stacked on the
// previous one.
func stackedBars(data [][]float64, names []string, barWidth vg.Length, legend bool) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	var below *plotter.BarChart
	for i, name := range names {
		v := make(plotter.Values, len(data))
		for j, d := range data {
			v[j] = d[i]
		}
		b, err := plotter.NewBarChart(v, barWidth)
		if err != nil {
			return nil, fmt.Errorf("chart: patch %s: %v", name, err)
		}
		b.Color = plotutil.Color(i)
		b.LineStyle.Color = color.White
		if below != nil {
			b.StackOn(below)
		}
		below = b
		p.Add(b)
		if legend {
			p.Legend.Add("Patch "+name, b)
		}
	}
	return p, nil
}

// WriteTimeSeriesPNG draws the TimeSeries plots side by side and writes
// them to w as a PNG image.
func WriteTimeSeriesPNG(w io.Writer, r *wcdm.Snapshots, width, height vg.Length) error {
	plots, err := TimeSeries(r)
	if err != nil {
		return err
	}
	return writePNG(w, width, height, plots...)
}

// WriteRepartitionPNG draws the Repartition plots side by side and
// writes them to w as a PNG image.
func WriteRepartitionPNG(w io.Writer, r *wcdm.Snapshots, width, height vg.Length) error {
	amounts, shares, err := Repartition(r, barWidth(width, r.Len()))
	if err != nil {
		return err
	}
	return writePNG(w, width, height, amounts, shares)
}

// WritePNG draws the time series above the repartition charts and writes
// them to w as a single PNG image.
func WritePNG(w io.Writer, r *wcdm.Snapshots, width, height vg.Length) error {
	series, err := TimeSeries(r)
	if err != nil {
		return err
	}
	amounts, shares, err := Repartition(r, barWidth(width, r.Len()))
	if err != nil {
		return err
	}
	img := vgimg.New(width, 2*height)
	dc := draw.New(img)
	top := draw.Crop(dc, 0, 0, height, 0)
	bottom := draw.Crop(dc, 0, 0, 0, -height)
	drawTiles(top, series)
	drawTiles(bottom, []*plot.Plot{amounts, shares})
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

func barWidth(width vg.Length, n int) vg.Length {
	return width / 2 / vg.Length(2*n+2)
}

func writePNG(w io.Writer, width, height vg.Length, plots ...*plot.Plot) error {
	img := vgimg.New(width, height)
	drawTiles(draw.New(img), plots)
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

func drawTiles(c draw.Canvas, plots []*plot.Plot) {
	t := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter,
	}
	for i, p := range plots {
		p.Draw(t.At(c, i, 0))
	}
}
