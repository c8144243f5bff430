package comtrade

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRecords packs raw analog values and digital words into the binary
// sample layout: 8-byte prefix, analog int16s, digital packing words.
func buildRecords(t *testing.T, analog [][]int16, digital [][]uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	records := len(analog)
	if records == 0 {
		records = len(digital)
	}
	for i := 0; i < records; i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(i+1)))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(i)))
		if len(analog) > 0 {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, analog[i]))
		}
		if len(digital) > 0 {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, digital[i]))
		}
	}
	return buf.Bytes()
}

func mustParse(t *testing.T, lines []string) *Config {
	t.Helper()
	cfg, err := ParseConfig(lines)
	require.NoError(t, err)
	return cfg
}

func TestDecodeData(t *testing.T) {
	cfg := mustParse(t, validLines())

	// 2 analog + 1 digital channels, 3 records of stride 8 + 4 + 2 = 14.
	analog := [][]int16{{100, 10}, {-200, 20}, {300, 30}}
	digital := [][]uint16{{0b10}, {0}, {0b10}}
	raw := buildRecords(t, analog, digital)
	require.Len(t, raw, 3*14)

	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, StatusParsed, d.Status)
	assert.Equal(t, 14, d.UnitSize)
	assert.Equal(t, 3, d.SampleCount)

	tv := d.TimeVector()
	require.Len(t, tv, 3)
	assert.Equal(t, 0.0, tv[0])
	assert.InDelta(t, 0.001, tv[1], 1e-12)
	assert.InDelta(t, 0.002, tv[2], 1e-12)
	for i := 1; i < len(tv); i++ {
		assert.Greater(t, tv[i], tv[i-1])
		assert.InDelta(t, 0.001, tv[i]-tv[i-1], 1e-12)
	}

	am := d.Analog()
	require.Len(t, am, 2)
	// Channel UA: a=0.5, b=1.
	assert.Equal(t, []float64{51, -99, 151}, am["UA(V)"])
	// Channel UB: a=2, b=0.
	assert.Equal(t, []float64{20, 40, 60}, am["UB(V)"])

	dm := d.Digital()
	require.Len(t, dm, 1)
	// Channel index 1 reads bit 1 of the packing word.
	assert.Equal(t, []int{1, 0, 1}, dm["TRIP"])
}

func TestDecodeDataAnalogCalibration(t *testing.T) {
	cfg := mustParse(t, validLines())
	raws := []int16{-32767, -1, 0, 1, 32767}
	analog := make([][]int16, len(raws))
	digital := make([][]uint16, len(raws))
	for i, r := range raws {
		analog[i] = []int16{r, r}
		digital[i] = []uint16{0}
	}
	cfg.Segments[0].EndSample = len(raws)

	d, err := DecodeData(cfg, buildRecords(t, analog, digital), DecodeOptions{})
	require.NoError(t, err)

	ua := d.Analog()["UA(V)"]
	ub := d.Analog()["UB(V)"]
	for i, r := range raws {
		assert.InDelta(t, float64(r)*0.5+1, ua[i], 1e-9)
		assert.InDelta(t, float64(r)*2, ub[i], 1e-9)
	}
}

func TestDecodeDataTruncated(t *testing.T) {
	cfg := mustParse(t, validLines())
	raw := buildRecords(t, [][]int16{{1, 2}}, [][]uint16{{0}})

	// One record present, three declared.
	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, StatusFailed, d.Status)
	assert.Empty(t, d.Analog())
	assert.Empty(t, d.Digital())
	assert.Empty(t, d.TimeVector())
}

func TestDecodeDataNegativeEndSample(t *testing.T) {
	lines := validLines()
	lines[7] = "1000,-5"
	cfg := mustParse(t, lines)
	raw := buildRecords(t, [][]int16{{1, 2}}, [][]uint16{{0}})

	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.ErrorIs(t, err, ErrFieldFormat)
	assert.Equal(t, StatusFailed, d.Status)
	assert.NotPanics(t, func() { d.TimeVector() })
	assert.Empty(t, d.TimeVector())
}

func TestDecodeDataHugeEndSample(t *testing.T) {
	// A declared sample count large enough to overflow count*stride must
	// still be caught by the truncation guard.
	lines := validLines()
	lines[7] = "1000,1317624576693539401"
	cfg := mustParse(t, lines)
	raw := buildRecords(t, [][]int16{{1, 2}}, [][]uint16{{0}})

	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, StatusFailed, d.Status)
}

func TestDecodeDataTwice(t *testing.T) {
	cfg := mustParse(t, validLines())
	raw := buildRecords(t,
		[][]int16{{100, 10}, {-200, 20}, {300, 30}},
		[][]uint16{{0b10}, {0}, {0b10}})

	_, err := DecodeData(cfg, raw, DecodeOptions{})
	require.NoError(t, err)
	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.NoError(t, err)

	// Channel buffers are reset between decodes, not appended to.
	assert.Equal(t, []float64{51, -99, 151}, d.Analog()["UA(V)"])
	assert.Equal(t, []int{1, 0, 1}, d.Digital()["TRIP"])
}

func TestDecodeDataEncoding(t *testing.T) {
	lines := validLines()
	lines[10] = "ASCII"
	cfg := mustParse(t, lines)
	raw := buildRecords(t,
		[][]int16{{1, 2}, {3, 4}, {5, 6}},
		[][]uint16{{0}, {0}, {0}})

	_, err := DecodeData(cfg, raw, DecodeOptions{})
	require.ErrorIs(t, err, ErrEncoding)

	// The legacy escape hatch decodes the body as 16-bit integers anyway.
	d, err := DecodeData(cfg, raw, DecodeOptions{IgnoreEncoding: true})
	require.NoError(t, err)
	assert.Equal(t, StatusParsed, d.Status)
}

func TestDecodeDataUnparsedConfig(t *testing.T) {
	cfg := &Config{Status: StatusFailed}
	d, err := DecodeData(cfg, nil, DecodeOptions{})
	require.ErrorIs(t, err, ErrNotParsed)
	assert.Empty(t, d.Analog())
	assert.Empty(t, d.Digital())
	assert.Empty(t, d.TimeVector())

	_, err = DecodeData(nil, nil, DecodeOptions{})
	require.ErrorIs(t, err, ErrNotParsed)
}

func TestLoadDataMissing(t *testing.T) {
	cfg := mustParse(t, validLines())
	d, err := LoadData(cfg, filepath.Join(t.TempDir(), "nope.dat"), DecodeOptions{})
	require.ErrorIs(t, err, ErrMissingFile)
	assert.Equal(t, StatusMissingFile, d.Status)
	assert.Empty(t, d.Analog())
	assert.Empty(t, d.Digital())
	assert.Empty(t, d.TimeVector())
}

// digitalOnlyLines declares n digital channels and no analog channels.
func digitalOnlyLines(n int) []string {
	lines := []string{
		"SUBSTATION-7,7,1999",
		fmt.Sprintf("%d,0A,%dD", n, n),
	}
	for i := 1; i <= n; i++ {
		lines = append(lines, makeDigitalLine(i))
	}
	return append(lines,
		"50",
		"1",
		"1000,1",
		"01/01/2026,10:30:00.000000",
		"01/01/2026,10:30:00.500000",
		"binary",
		"1",
	)
}

func TestDigitalBitAddressingBeyondWord(t *testing.T) {
	// 17 digital channels pack into two words; channel 17 lives in the
	// second word. Historical decoders shifted by the absolute channel
	// index and read nothing useful there.
	cfg := mustParse(t, digitalOnlyLines(17))
	raw := buildRecords(t, nil, [][]uint16{{0, 0b10}})

	d, err := DecodeData(cfg, raw, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, d.Digital()["ST17"])

	cfgLegacy := mustParse(t, digitalOnlyLines(17))
	d, err = DecodeData(cfgLegacy, raw, DecodeOptions{LegacyBitAddressing: true})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, d.Digital()["ST17"])
}

func TestDigitalBitAddressingLowIndexAgreement(t *testing.T) {
	// Below index 16 the legacy and re-based addressing read the same bit.
	word := uint16(0b101010)
	for _, legacy := range []bool{false, true} {
		cfg := mustParse(t, digitalOnlyLines(5))
		raw := buildRecords(t, nil, [][]uint16{{word}})
		d, err := DecodeData(cfg, raw, DecodeOptions{LegacyBitAddressing: legacy})
		require.NoError(t, err)
		for i := 1; i <= 5; i++ {
			want := int((word >> uint(i)) & 1)
			got := d.Digital()[fmt.Sprintf("ST%d", i)]
			assert.Equal(t, []int{want}, got, "channel %d legacy=%v", i, legacy)
		}
	}
}

func TestDecodeDataNoSegments(t *testing.T) {
	lines := validLines()
	lines[6] = "0"
	// Remove the single segment line.
	lines = append(lines[:7], lines[8:]...)
	cfg := mustParse(t, lines)

	_, err := DecodeData(cfg, nil, DecodeOptions{})
	require.ErrorIs(t, err, ErrStructure)
}
