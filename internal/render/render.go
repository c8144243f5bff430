// Package render draws decoded channel waveforms as text. All rendering
// state is carried in an Options value passed to the renderer; there is no
// package-level configuration to mutate.
package render

import (
	"fmt"
	"io"
	"strings"
)

// Options configures a waveform rendering.
type Options struct {
	Width      int // plot columns, excluding axis labels
	Height     int // plot rows
	MaxSamples int // cap on plotted samples, 0 for no cap
}

// DefaultOptions returns the rendering geometry used by the CLI tools.
func DefaultOptions() Options {
	return Options{Width: 80, Height: 20, MaxSamples: 10000}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 20
	}
	return o
}

// Renderer draws one named channel over its time vector.
type Renderer interface {
	Render(w io.Writer, name string, t, values []float64) error
}

// ASCII renders waveforms as a character grid with value and time axes.
type ASCII struct {
	opts Options
}

// NewASCII returns a text renderer with the given options.
func NewASCII(opts Options) *ASCII {
	return &ASCII{opts: opts.normalized()}
}

// Render plots the channel values against time. Values are scaled to the
// observed range; a flat signal is drawn on a widened band so the line
// stays visible.
func (a *ASCII) Render(w io.Writer, name string, t, values []float64) error {
	if len(values) == 0 {
		_, err := fmt.Fprintf(w, "%s: no samples to display\n", name)
		return err
	}
	if len(t) != len(values) {
		return fmt.Errorf("time vector has %d entries, values have %d", len(t), len(values))
	}

	if a.opts.MaxSamples > 0 && len(values) > a.opts.MaxSamples {
		t = t[:a.opts.MaxSamples]
		values = values[:a.opts.MaxSamples]
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		maxV = minV + 1e-6
	}

	width, height := a.opts.Width, a.opts.Height
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i, v := range values {
		x := 0
		if len(values) > 1 {
			x = i * (width - 1) / (len(values) - 1)
		}
		norm := (v - minV) / (maxV - minV)
		y := int(float64(height-1) * (1.0 - norm))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		if grid[y][x] == ' ' {
			grid[y][x] = '*'
		} else {
			grid[y][x] = '#'
		}
	}

	fmt.Fprintf(w, "%s (%d samples, %.6fs - %.6fs)\n", name, len(values), t[0], t[len(t)-1])
	for i, row := range grid {
		norm := float64(height-1-i) / float64(height-1)
		label := minV + norm*(maxV-minV)
		fmt.Fprintf(w, "%10.3f |%s|\n", label, string(row))
	}
	fmt.Fprintf(w, "%s+%s+\n", strings.Repeat(" ", 11), strings.Repeat("-", width))

	start := fmt.Sprintf("%.4fs", t[0])
	end := fmt.Sprintf("%.4fs", t[len(t)-1])
	pad := width - len(start) - len(end)
	if pad < 1 {
		pad = 1
	}
	_, err := fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", 12), start,
		strings.Repeat(" ", pad), end)
	return err
}
