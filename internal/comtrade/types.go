// Package comtrade decodes power-system disturbance recordings stored in the
// COMTRADE format: an ASCII configuration file (.cfg) describing the recorded
// channels, paired with a binary sample file (.dat) holding fixed-stride
// little-endian records of 16-bit signed integers.
package comtrade

import (
	"errors"
	"fmt"
)

// Status reports what stage a configuration or sample file reached.
type Status int

const (
	// StatusNone means parsing was never attempted.
	StatusNone Status = iota

	// StatusMissingFile means the file does not exist on disk.
	StatusMissingFile

	// StatusFailed means the file exists but could not be parsed.
	StatusFailed

	// StatusParsed means the file was parsed completely.
	StatusParsed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusMissingFile:
		return "missing file"
	case StatusFailed:
		return "failed"
	case StatusParsed:
		return "parsed"
	default:
		return "none"
	}
}

// Sentinel errors returned (wrapped) by the parsers and the decoder.
// Callers classify failures with errors.Is.
var (
	ErrMissingFile = errors.New("file not found")
	ErrStructure   = errors.New("configuration structure mismatch")
	ErrFieldCount  = errors.New("unexpected field count")
	ErrFieldFormat = errors.New("malformed field")
	ErrTruncated   = errors.New("sample data truncated")
	ErrEncoding    = errors.New("unsupported data encoding")
	ErrNotParsed   = errors.New("configuration not parsed")
)

// FileIdentity is the first configuration line: the recording station, the
// recording device identifier, and the COMTRADE revision year.
type FileIdentity struct {
	StationName  string
	DeviceID     int
	RevisionYear string
}

// ChannelLayout is the channel-count summary line. Total must equal
// Analog + Digital; when the declared counts disagree the layout collapses
// to all zeros and the rest of the configuration is read as channel-free.
type ChannelLayout struct {
	Total   int
	Analog  int
	Digital int
}

// Empty reports whether the layout declares no channels, either genuinely
// or because an inconsistent declaration was collapsed.
func (l ChannelLayout) Empty() bool {
	return l.Total == 0 && l.Analog == 0 && l.Digital == 0
}

// AnalogChannel describes one analog channel and owns its decoded values.
type AnalogChannel struct {
	Index     int     // 1-based channel number
	ID        string  // channel identifier
	Phase     string  // phase label
	Circuit   string  // monitored circuit component
	Unit      string  // physical unit of the calibrated values
	A         float64 // scale multiplier
	B         float64 // scale offset
	Skew      float64 // channel time skew in microseconds
	Min       float64 // declared minimum raw value
	Max       float64 // declared maximum raw value
	Primary   float64 // transformer primary ratio
	Secondary float64 // transformer secondary ratio
	PS        string  // primary/secondary flag

	data []float64
}

// Key returns the name under which the channel's values are published,
// "<id>(<unit>)".
func (c *AnalogChannel) Key() string {
	return fmt.Sprintf("%s(%s)", c.ID, c.Unit)
}

// Data returns the decoded physical values in sample order. The slice is
// only populated once the paired sample file has been decoded.
func (c *AnalogChannel) Data() []float64 {
	return c.data
}

// append converts one raw sample through the channel's linear calibration
// and stores the physical value.
func (c *AnalogChannel) append(raw int16) {
	c.data = append(c.data, float64(raw)*c.A+c.B)
}

// reset discards any previously decoded values so a document can be
// decoded again without doubling its buffers.
func (c *AnalogChannel) reset() {
	c.data = c.data[:0]
}

// DigitalChannel describes one digital (status) channel and owns its
// decoded bit values.
type DigitalChannel struct {
	Index       int    // 1-based channel number
	ID          string // channel identifier
	Phase       string // phase label
	Circuit     string // monitored circuit component
	NormalState int    // normal (quiescent) state, 0 or 1

	// BitPos is the zero-based bit position of the channel inside its
	// 16-channel packing word, derived from the declared index.
	BitPos int

	data []int
}

// Data returns the decoded 0/1 values in sample order.
func (c *DigitalChannel) Data() []int {
	return c.data
}

// append extracts the channel's bit from the packing word that covers it.
// Legacy addressing tests bit Index of the sign-extended word, which reads
// the wrong bit for channels with index >= 16; it is kept selectable for
// byte-compatibility with historical decoders.
func (c *DigitalChannel) append(word int16, legacy bool) {
	bit := 0
	if legacy {
		if int32(word)&(int32(1)<<uint(c.Index)) != 0 {
			bit = 1
		}
	} else {
		if uint16(word)&(uint16(1)<<uint(c.BitPos)) != 0 {
			bit = 1
		}
	}
	c.data = append(c.data, bit)
}

// reset discards any previously decoded values.
func (c *DigitalChannel) reset() {
	c.data = c.data[:0]
}

// RateSegment declares one sampling-rate segment: the rate in Hz and the
// number of the last sample recorded at that rate.
type RateSegment struct {
	Rate      float64
	EndSample int
}

// Timestamp is a COMTRADE date/time pair. No calendar validation is done;
// the fields are carried exactly as declared.
type Timestamp struct {
	Day    int
	Month  int
	Year   int
	Hour   int
	Minute int
	Second float64
}

// String formats the timestamp the way the configuration file spells it.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d/%02d/%d,%02d:%02d:%09.6f",
		t.Day, t.Month, t.Year, t.Hour, t.Minute, t.Second)
}

// Config is the fully parsed configuration document. It is built once per
// decoding session and not mutated afterwards, except for the channel value
// buffers filled in by the sample decoder.
type Config struct {
	Path   string
	Status Status

	Identity      FileIdentity
	Layout        ChannelLayout
	Analogs       []*AnalogChannel
	Digitals      []*DigitalChannel
	LineFrequency float64
	Segments      []RateSegment
	Start         Timestamp
	Trigger       Timestamp
	Encoding      string // lower-cased declared sample encoding token
	TimeMult      float64
}

// ActiveSegment returns the rate segment used for timing. Only the first
// declared segment drives the sample count and time step; the remaining
// segments are retained on the document but not used.
func (c *Config) ActiveSegment() (RateSegment, bool) {
	if len(c.Segments) == 0 {
		return RateSegment{}, false
	}
	return c.Segments[0], true
}

// DecodeOptions selects between the strict decoder behavior and the
// compatibility quirks of historical implementations.
type DecodeOptions struct {
	// LegacyBitAddressing tests digital bits by absolute channel index
	// instead of the re-based 0-15 position within the packing word.
	// Identical for indices below 16, wrong above.
	LegacyBitAddressing bool

	// IgnoreEncoding decodes the sample body as 16-bit integers even when
	// the configuration declares a different encoding. The strict default
	// refuses everything but "binary".
	IgnoreEncoding bool
}
