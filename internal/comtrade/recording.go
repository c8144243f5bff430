package comtrade

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File extensions of a recording pair. The sample file is located by
// convention as the .dat sibling of the .cfg file.
const (
	ConfigExt = ".cfg"
	DataExt   = ".dat"
)

// Channel selection names accepted by Channels and the CLI tools.
const (
	SelectAnalog  = "analog"
	SelectDigital = "digital"
	SelectAll     = "all"
)

// Recording is one decoding session: a configuration document paired with
// its decoded sample file. A Recording and its channel buffers belong to a
// single caller; independent sessions can run concurrently, a shared one
// cannot.
type Recording struct {
	BasePath string
	Config   *Config
	Data     *DataFile
}

// OpenRecording opens a recording by either of its file names (.cfg or
// .dat), parses the configuration, and decodes the sample records.
//
// The returned Recording is non-nil even on failure so the caller can
// inspect the per-stage status; its channel views are then empty. A parse
// failure at the configuration stage means the sample file is never read.
func OpenRecording(path string, opts DecodeOptions) (*Recording, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ConfigExt && ext != DataExt {
		return nil, fmt.Errorf("not a comtrade recording: %s", path)
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))

	r := &Recording{BasePath: base}
	cfg, err := LoadConfig(base + ConfigExt)
	r.Config = cfg
	if err != nil {
		r.Data = &DataFile{cfg: cfg}
		return r, err
	}

	data, err := LoadData(cfg, base+DataExt, opts)
	r.Data = data
	if err != nil {
		return r, err
	}
	return r, nil
}

// ConfigStatus reports how far the configuration stage got.
func (r *Recording) ConfigStatus() Status {
	if r.Config == nil {
		return StatusNone
	}
	return r.Config.Status
}

// DataStatus reports how far the sample-decoding stage got.
func (r *Recording) DataStatus() Status {
	if r.Data == nil {
		return StatusNone
	}
	return r.Data.Status
}

// Decoded reports whether both stages completed and channel data is
// available.
func (r *Recording) Decoded() bool {
	return r.ConfigStatus() == StatusParsed && r.DataStatus() == StatusParsed
}

// SampleRate returns the nominal sampling rate in Hz, zero when the
// configuration declares no rate segments or was not parsed.
func (r *Recording) SampleRate() float64 {
	if r.ConfigStatus() != StatusParsed {
		return 0
	}
	seg, ok := r.Config.ActiveSegment()
	if !ok {
		return 0
	}
	return seg.Rate
}

// TimeVector returns the sample instants, empty for a failed session.
func (r *Recording) TimeVector() []float64 {
	if r.Data == nil {
		return nil
	}
	return r.Data.TimeVector()
}

// Analog returns the calibrated analog channel values keyed by
// "<id>(<unit>)", empty for a failed session.
func (r *Recording) Analog() map[string][]float64 {
	if r.Data == nil {
		return make(map[string][]float64)
	}
	return r.Data.Analog()
}

// Digital returns the digital channel bit values keyed by id, empty for a
// failed session.
func (r *Recording) Digital() map[string][]int {
	if r.Data == nil {
		return make(map[string][]int)
	}
	return r.Data.Digital()
}

// ChannelSet is an ordered, name-keyed view of decoded channel values, the
// form consumed by the export and rendering collaborators.
type ChannelSet struct {
	Names  []string
	Values map[string][]float64
}

// add registers a channel, keeping first-seen order. A later channel with
// the same name overwrites the earlier values: the combined view is an
// explicit last-writer-wins merge.
func (s *ChannelSet) add(name string, values []float64) {
	if _, ok := s.Values[name]; !ok {
		s.Names = append(s.Names, name)
	}
	s.Values[name] = values
}

// Len returns the number of samples per channel in the set.
func (s *ChannelSet) Len() int {
	if len(s.Names) == 0 {
		return 0
	}
	return len(s.Values[s.Names[0]])
}

// Channels assembles the named selection of channel values: analog,
// digital, or the combined view. Channels appear in declaration order,
// analog before digital; in the combined view a digital channel whose id
// collides with an analog key overwrites it.
func (r *Recording) Channels(selection string) (*ChannelSet, error) {
	set := &ChannelSet{Values: make(map[string][]float64)}
	if !r.Decoded() {
		return set, nil
	}

	switch strings.ToLower(selection) {
	case SelectAnalog:
		r.addAnalog(set)
	case SelectDigital:
		r.addDigital(set)
	case SelectAll:
		r.addAnalog(set)
		r.addDigital(set)
	default:
		return nil, fmt.Errorf("unknown channel selection %q", selection)
	}
	return set, nil
}

func (r *Recording) addAnalog(set *ChannelSet) {
	for _, ch := range r.Config.Analogs {
		set.add(ch.Key(), ch.Data())
	}
}

func (r *Recording) addDigital(set *ChannelSet) {
	for _, ch := range r.Config.Digitals {
		bits := ch.Data()
		values := make([]float64, len(bits))
		for i, b := range bits {
			values[i] = float64(b)
		}
		set.add(ch.ID, values)
	}
}
