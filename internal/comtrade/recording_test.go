package comtrade

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture writes a small recording pair into dir and returns its base
// path. Two analog channels (a=0.5 b=1, a=2 b=0) and one digital channel.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()

	content := ""
	for _, line := range validLines() {
		content += line + "\n"
	}
	base := filepath.Join(dir, "fault")
	require.NoError(t, os.WriteFile(base+ConfigExt, []byte(content), 0o644))

	raw := buildRecords(t,
		[][]int16{{100, 10}, {-200, 20}, {300, 30}},
		[][]uint16{{0b10}, {0}, {0b10}})
	require.NoError(t, os.WriteFile(base+DataExt, raw, 0o644))
	return base
}

func TestOpenRecording(t *testing.T) {
	base := writeFixture(t, t.TempDir())

	rec, err := OpenRecording(base+ConfigExt, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, rec.Decoded())
	assert.Equal(t, StatusParsed, rec.ConfigStatus())
	assert.Equal(t, StatusParsed, rec.DataStatus())
	assert.Equal(t, 1000.0, rec.SampleRate())

	assert.Equal(t, []float64{51, -99, 151}, rec.Analog()["UA(V)"])
	assert.Equal(t, []int{1, 0, 1}, rec.Digital()["TRIP"])
	assert.Len(t, rec.TimeVector(), 3)
}

func TestOpenRecordingByDataPath(t *testing.T) {
	base := writeFixture(t, t.TempDir())

	rec, err := OpenRecording(base+DataExt, DecodeOptions{})
	require.NoError(t, err)
	assert.True(t, rec.Decoded())
	assert.Equal(t, base, rec.BasePath)
}

func TestOpenRecordingWrongExtension(t *testing.T) {
	_, err := OpenRecording("fault.txt", DecodeOptions{})
	require.Error(t, err)
}

func TestOpenRecordingMissingConfig(t *testing.T) {
	rec, err := OpenRecording(filepath.Join(t.TempDir(), "nope.cfg"), DecodeOptions{})
	require.ErrorIs(t, err, ErrMissingFile)
	require.NotNil(t, rec)
	assert.Equal(t, StatusMissingFile, rec.ConfigStatus())
	assert.False(t, rec.Decoded())
	assert.Empty(t, rec.Analog())
	assert.Empty(t, rec.Digital())
	assert.Empty(t, rec.TimeVector())
}

func TestOpenRecordingMissingData(t *testing.T) {
	dir := t.TempDir()
	base := writeFixture(t, dir)
	require.NoError(t, os.Remove(base+DataExt))

	rec, err := OpenRecording(base+ConfigExt, DecodeOptions{})
	require.ErrorIs(t, err, ErrMissingFile)
	require.NotNil(t, rec)

	// The configuration stage succeeded; only the data stage is missing.
	assert.Equal(t, StatusParsed, rec.ConfigStatus())
	assert.Equal(t, StatusMissingFile, rec.DataStatus())
	assert.False(t, rec.Decoded())
	assert.Empty(t, rec.Analog())
	assert.Empty(t, rec.Digital())
	assert.Empty(t, rec.TimeVector())
}

func TestChannels(t *testing.T) {
	base := writeFixture(t, t.TempDir())
	rec, err := OpenRecording(base+ConfigExt, DecodeOptions{})
	require.NoError(t, err)

	analog, err := rec.Channels(SelectAnalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"UA(V)", "UB(V)"}, analog.Names)
	assert.Equal(t, 3, analog.Len())

	digital, err := rec.Channels(SelectDigital)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRIP"}, digital.Names)
	assert.Equal(t, []float64{1, 0, 1}, digital.Values["TRIP"])

	all, err := rec.Channels(SelectAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"UA(V)", "UB(V)", "TRIP"}, all.Names)

	_, err = rec.Channels("bogus")
	require.Error(t, err)
}

func TestChannelsMergeCollision(t *testing.T) {
	// A digital channel named like an analog key: the combined view keeps
	// the first-seen position but the later (digital) values win.
	lines := validLines()
	lines[4] = "1,UA(V),,,0"

	dir := t.TempDir()
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	base := filepath.Join(dir, "collide")
	require.NoError(t, os.WriteFile(base+ConfigExt, []byte(content), 0o644))
	raw := buildRecords(t,
		[][]int16{{100, 10}, {-200, 20}, {300, 30}},
		[][]uint16{{0b10}, {0}, {0b10}})
	require.NoError(t, os.WriteFile(base+DataExt, raw, 0o644))

	rec, err := OpenRecording(base+ConfigExt, DecodeOptions{})
	require.NoError(t, err)

	all, err := rec.Channels(SelectAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"UA(V)", "UB(V)"}, all.Names)
	assert.Equal(t, []float64{1, 0, 1}, all.Values["UA(V)"])
}

func TestChannelsFailedSession(t *testing.T) {
	rec, _ := OpenRecording(filepath.Join(t.TempDir(), "nope.cfg"), DecodeOptions{})
	set, err := rec.Channels(SelectAll)
	require.NoError(t, err)
	assert.Empty(t, set.Names)
	assert.Equal(t, 0, set.Len())
}
