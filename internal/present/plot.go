//  Copyright 2019 Marius Ackerman
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package present

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/goccmack/notetrack/internal/apperr"
	"github.com/goccmack/notetrack/internal/pcm"
	"github.com/goccmack/notetrack/internal/pipeline"
	"github.com/goccmack/notetrack/internal/pitch"
)

// maxPlotPoints bounds the vertices of each plotted line
const maxPlotPoints = 8192

var (
	onsetColor = color.RGBA{R: 0xff, B: 0xff, A: 0xff}
	dashes     = []vg.Length{vg.Points(4), vg.Points(3)}
)

// Plot writes a PNG at path with two stacked panels: amplitude against
// time with a vertical line per candidate onset (solid when accepted,
// dashed otherwise), and the power spectrum of the whole signal.
func Plot(path string, title string, sig *pcm.Signal, res *pipeline.Result) error {
	wave, err := WaveformPlot(sig, res.RawOnsets, res.Accepted)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPlotBackendUnavailable, err)
	}
	wave.Title.Text = title + ": amplitude vs time"
	spec, err := SpectrumPlot(sig, res.Frequencies())
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPlotBackendUnavailable, err)
	}

	img := vgimg.New(vg.Points(1000), vg.Points(700))
	dc := draw.New(img)
	t := draw.Tiles{Rows: 2, Cols: 1, PadX: vg.Millimeter, PadY: 4 * vg.Millimeter}
	plots := [][]*plot.Plot{{wave}, {spec}}
	for _, p := range []*plot.Plot{wave, spec} {
		fixRange(&p.X)
		fixRange(&p.Y)
	}
	canvases := plot.Align(plots, t, dc)
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPlotBackendUnavailable, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("%w: %v", apperr.ErrPlotBackendUnavailable, err)
	}
	return w.Close()
}

// WaveformPlot plots amplitude against time in milliseconds.
func WaveformPlot(sig *pcm.Signal, raw, accepted []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Amplitude vs time"
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Amplitude"

	xys, lo, hi := waveformPoints(sig)
	if len(xys) > 0 {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = color.Black
		p.Add(l)
	}

	keep := make(map[float64]bool, len(accepted))
	for _, t := range accepted {
		keep[t] = true
	}
	for _, t := range raw {
		ms := 1000 * t
		l, err := plotter.NewLine(plotter.XYs{{X: ms, Y: lo}, {X: ms, Y: hi}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = onsetColor
		if !keep[t] {
			l.LineStyle.Dashes = dashes
		}
		p.Add(l)
	}
	return p, nil
}

// fixRange gives an axis without data a unit range.
func fixRange(a *plot.Axis) {
	if math.IsInf(a.Min, 0) {
		a.Min = 0
	}
	if math.IsInf(a.Max, 0) || a.Max <= a.Min {
		a.Max = a.Min + 1
	}
}

// waveformPoints returns a min/max envelope of the signal in at most
// maxPlotPoints vertices, and the sample range.
func waveformPoints(sig *pcm.Signal) (xys plotter.XYs, lo, hi float64) {
	n := sig.Len()
	if n == 0 {
		return nil, -1, 1
	}
	step := (2*n + maxPlotPoints - 1) / maxPlotPoints
	if step < 1 {
		step = 1
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	msPerSample := 1000 / float64(sig.Rate)
	for i := 0; i < n; i += step {
		j := i + step
		if j > n {
			j = n
		}
		mn, mx := math.Inf(1), math.Inf(-1)
		for _, v := range sig.Samples[i:j] {
			mn = math.Min(mn, float64(v))
			mx = math.Max(mx, float64(v))
		}
		x := float64(i) * msPerSample
		if step == 1 {
			xys = append(xys, plotter.XY{X: x, Y: mn})
		} else {
			xys = append(xys, plotter.XY{X: x, Y: mn}, plotter.XY{X: x, Y: mx})
		}
		lo, hi = math.Min(lo, mn), math.Max(hi, mx)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return xys, lo, hi
}

// SpectrumXMax returns ceil(max(freqs)/500)*500, or 0 when there is no
// positive frequency.
func SpectrumXMax(freqs []float64) float64 {
	var mx float64
	for _, f := range freqs {
		mx = math.Max(mx, f)
	}
	return math.Ceil(mx/500) * 500
}

// SpectrumPlot plots the power spectrum of the whole signal in dB.
func SpectrumPlot(sig *pcm.Signal, freqs []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Power vs frequency"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Power (dB)"

	f, db := pitch.PowerDB(sig.Samples, sig.Rate, sig.FullScale())
	xMax := SpectrumXMax(freqs)
	xys := spectrumPoints(f, db, xMax)
	if len(xys) > 0 {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = color.Black
		p.Add(l)
	}
	if xMax > 0 {
		p.X.Min, p.X.Max = 0, xMax
	}
	return p, nil
}

// spectrumPoints keeps bins up to xMax (all bins when xMax is 0), replaces
// -Inf by the lowest finite level and keeps the peak of each bucket.
func spectrumPoints(f, db []float64, xMax float64) plotter.XYs {
	n := len(f)
	if xMax > 0 {
		for n > 0 && f[n-1] > xMax {
			n--
		}
	}
	if n == 0 {
		return nil
	}
	floor := math.Inf(1)
	for _, v := range db[:n] {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			floor = math.Min(floor, v)
		}
	}
	if math.IsInf(floor, 1) {
		return nil
	}
	step := (n + maxPlotPoints - 1) / maxPlotPoints
	xys := make(plotter.XYs, 0, n/step+1)
	for i := 0; i < n; i += step {
		j := i + step
		if j > n {
			j = n
		}
		k := i
		for m := i; m < j; m++ {
			if db[m] > db[k] {
				k = m
			}
		}
		v := db[k]
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = floor
		}
		xys = append(xys, plotter.XY{X: f[k], Y: v})
	}
	return xys
}
