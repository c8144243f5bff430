package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWaveform(t *testing.T) {
	n := 200
	tv := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		tv[i] = float64(i) * 0.001
		values[i] = math.Sin(2 * math.Pi * 50 * tv[i])
	}

	var buf bytes.Buffer
	r := NewASCII(Options{Width: 60, Height: 10})
	require.NoError(t, r.Render(&buf, "UA(V)", tv, values))

	out := buf.String()
	assert.Contains(t, out, "UA(V)")
	assert.Contains(t, out, "*")

	// Header, one line per grid row, axis line, time labels.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 10+3)
}

func TestRenderFlatSignal(t *testing.T) {
	tv := []float64{0, 0.001, 0.002}
	values := []float64{5, 5, 5}

	var buf bytes.Buffer
	r := NewASCII(DefaultOptions())
	require.NoError(t, r.Render(&buf, "FLAT", tv, values))
	assert.Contains(t, buf.String(), "FLAT")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewASCII(DefaultOptions())
	require.NoError(t, r.Render(&buf, "EMPTY", nil, nil))
	assert.Contains(t, buf.String(), "no samples")
}

func TestRenderLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	r := NewASCII(DefaultOptions())
	require.Error(t, r.Render(&buf, "BAD", []float64{0}, []float64{1, 2}))
}

func TestRenderSampleCap(t *testing.T) {
	n := 500
	tv := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		tv[i] = float64(i)
		values[i] = float64(i % 7)
	}

	var buf bytes.Buffer
	r := NewASCII(Options{Width: 40, Height: 8, MaxSamples: 100})
	require.NoError(t, r.Render(&buf, "CAP", tv, values))
	assert.Contains(t, buf.String(), "100 samples")
}
