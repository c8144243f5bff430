package comtrade

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Bytes of sample-number and timestamp prefix at the head of every record.
const recordPrefixBytes = 8

// DataFile is the decoded binary sample file. Channel values land in the
// configuration document's channel buffers; DataFile carries the derived
// record geometry and timing.
type DataFile struct {
	Path   string
	Status Status

	UnitSize    int     // fixed record stride in bytes
	SampleCount int     // number of records, from the active rate segment
	DeltaT      float64 // uniform time step, 1/rate

	cfg *Config
}

// LoadData reads the binary sibling of a parsed configuration and decodes
// every sample record into the configuration's channel buffers. A missing
// sample file is not fatal to the session: the returned DataFile is tagged
// StatusMissingFile and all channel views stay empty.
func LoadData(cfg *Config, path string, opts DecodeOptions) (*DataFile, error) {
	d := &DataFile{Path: path, cfg: cfg}
	if cfg == nil || cfg.Status != StatusParsed {
		return d, fmt.Errorf("decode %s: %w", path, ErrNotParsed)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			d.Status = StatusMissingFile
			return d, fmt.Errorf("sample file %s: %w", path, ErrMissingFile)
		}
		d.Status = StatusFailed
		return d, fmt.Errorf("read sample file %s: %w", path, err)
	}

	if err := d.decode(raw, opts); err != nil {
		d.Status = StatusFailed
		return d, fmt.Errorf("decode %s: %w", path, err)
	}
	d.Status = StatusParsed
	return d, nil
}

// DecodeData decodes an in-memory sample buffer against a parsed
// configuration document.
func DecodeData(cfg *Config, raw []byte, opts DecodeOptions) (*DataFile, error) {
	d := &DataFile{cfg: cfg}
	if cfg == nil || cfg.Status != StatusParsed {
		return d, ErrNotParsed
	}
	if err := d.decode(raw, opts); err != nil {
		d.Status = StatusFailed
		return d, err
	}
	d.Status = StatusParsed
	return d, nil
}

// decode walks the fixed-stride records. Per record: an 8-byte prefix, one
// little-endian int16 per analog channel, then the 16-channel packing words
// for the digital channels.
func (d *DataFile) decode(raw []byte, opts DecodeOptions) error {
	cfg := d.cfg
	seg, ok := cfg.ActiveSegment()
	if !ok {
		return fmt.Errorf("no rate segments declared: %w", ErrStructure)
	}
	if seg.Rate <= 0 {
		return fmt.Errorf("sample rate %g not positive: %w", seg.Rate, ErrFieldFormat)
	}
	if seg.EndSample < 0 {
		return fmt.Errorf("end sample %d negative: %w", seg.EndSample, ErrFieldFormat)
	}
	if !opts.IgnoreEncoding && cfg.Encoding != "binary" {
		return fmt.Errorf("declared encoding %q, only binary 16-bit is supported: %w",
			cfg.Encoding, ErrEncoding)
	}

	analogBytes := 2 * cfg.Layout.Analog
	digitalWords := (cfg.Layout.Digital + 15) / 16
	d.UnitSize = recordPrefixBytes + analogBytes + 2*digitalWords
	d.SampleCount = seg.EndSample
	d.DeltaT = 1.0 / seg.Rate

	// Divide instead of multiplying so a huge declared sample count cannot
	// overflow the bound.
	if len(raw)/d.UnitSize < d.SampleCount {
		return fmt.Errorf("sample file holds %d bytes, need %d records of %d bytes: %w",
			len(raw), d.SampleCount, d.UnitSize, ErrTruncated)
	}

	for _, ch := range cfg.Analogs {
		ch.reset()
	}
	for _, ch := range cfg.Digitals {
		ch.reset()
	}

	for i := 0; i < d.SampleCount; i++ {
		base := i * d.UnitSize
		analogBase := base + recordPrefixBytes
		for ch, ac := range cfg.Analogs {
			off := analogBase + 2*ch
			ac.append(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		digitalBase := analogBase + analogBytes
		for ch, dc := range cfg.Digitals {
			off := digitalBase + 2*(ch/16)
			word := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			dc.append(word, opts.LegacyBitAddressing)
		}
	}
	return nil
}

// TimeVector returns the evenly spaced sample instants [0, dt, 2dt, ...].
// It is empty unless decoding completed.
func (d *DataFile) TimeVector() []float64 {
	if d.Status != StatusParsed {
		return nil
	}
	t := make([]float64, d.SampleCount)
	for i := range t {
		t[i] = float64(i) * d.DeltaT
	}
	return t
}

// Analog returns the calibrated analog values keyed by "<id>(<unit>)".
// The map is empty unless decoding completed.
func (d *DataFile) Analog() map[string][]float64 {
	m := make(map[string][]float64)
	if d.Status != StatusParsed {
		return m
	}
	for _, ch := range d.cfg.Analogs {
		m[ch.Key()] = ch.Data()
	}
	return m
}

// Digital returns the decoded bit values keyed by channel id.
// The map is empty unless decoding completed.
func (d *DataFile) Digital() map[string][]int {
	m := make(map[string][]int)
	if d.Status != StatusParsed {
		return m
	}
	for _, ch := range d.cfg.Digitals {
		m[ch.ID] = ch.Data()
	}
	return m
}
