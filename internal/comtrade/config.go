package comtrade

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Required field counts for each configuration record type. Lines may carry
// extra trailing fields; those are ignored.
const (
	fileIdentityFields   = 3
	channelLayoutFields  = 3
	analogChannelFields  = 13
	digitalChannelFields = 5
	rateSegmentFields    = 2
	timestampFields      = 2
)

// LoadConfig reads and parses a COMTRADE configuration file. A missing file
// yields a document tagged StatusMissingFile and an error wrapping
// ErrMissingFile; no partially built document is ever returned as usable.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		cfg := &Config{Path: path, Status: StatusFailed}
		if os.IsNotExist(err) {
			cfg.Status = StatusMissingFile
			return cfg, fmt.Errorf("configuration %s: %w", path, ErrMissingFile)
		}
		return cfg, fmt.Errorf("read configuration %s: %w", path, err)
	}

	cfg, err := ParseConfig(strings.Split(string(raw), "\n"))
	cfg.Path = path
	if err != nil {
		return cfg, fmt.Errorf("parse configuration %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig builds a configuration document from the ordered lines of a
// .cfg file, consuming them in the fixed COMTRADE positional grammar:
// identity, channel layout, the declared analog and digital channel lines,
// line frequency, rate-segment count and segments, start and trigger
// timestamps, data encoding, and time multiplier.
//
// On failure the returned document is tagged StatusFailed and must not be
// handed to the sample decoder.
func ParseConfig(lines []string) (*Config, error) {
	cfg := &Config{Status: StatusFailed}

	cur := 0
	next := func() (string, error) {
		if cur >= len(lines) {
			return "", fmt.Errorf("configuration ends after %d lines: %w", cur, ErrStructure)
		}
		line := strings.TrimRight(lines[cur], "\r\n")
		cur++
		return line, nil
	}

	line, err := next()
	if err != nil {
		return cfg, err
	}
	if cfg.Identity, err = parseFileIdentity(line); err != nil {
		return cfg, err
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	if cfg.Layout, err = parseChannelLayout(line); err != nil {
		return cfg, err
	}

	for i := 0; i < cfg.Layout.Analog; i++ {
		if line, err = next(); err != nil {
			return cfg, err
		}
		ch, err := parseAnalogChannel(line)
		if err != nil {
			return cfg, err
		}
		cfg.Analogs = append(cfg.Analogs, ch)
	}

	for i := 0; i < cfg.Layout.Digital; i++ {
		if line, err = next(); err != nil {
			return cfg, err
		}
		ch, err := parseDigitalChannel(line)
		if err != nil {
			return cfg, err
		}
		cfg.Digitals = append(cfg.Digitals, ch)
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	if cfg.LineFrequency, err = parseFloat("line frequency", line); err != nil {
		return cfg, err
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	nrates, err := parseInt("rate segment count", line)
	if err != nil {
		return cfg, err
	}
	for i := 0; i < nrates; i++ {
		if line, err = next(); err != nil {
			return cfg, err
		}
		seg, err := parseRateSegment(line)
		if err != nil {
			return cfg, err
		}
		cfg.Segments = append(cfg.Segments, seg)
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	if cfg.Start, err = parseTimestamp(line); err != nil {
		return cfg, err
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	if cfg.Trigger, err = parseTimestamp(line); err != nil {
		return cfg, err
	}

	if line, err = next(); err != nil {
		return cfg, err
	}
	cfg.Encoding = strings.ToLower(strings.TrimSpace(line))

	if line, err = next(); err != nil {
		return cfg, err
	}
	if cfg.TimeMult, err = parseFloat("time multiplier", line); err != nil {
		return cfg, err
	}

	cfg.Status = StatusParsed
	return cfg, nil
}

// splitFields splits a comma-delimited record line and enforces the minimum
// field count for its record type.
func splitFields(line, what string, want int) ([]string, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) < want {
		return nil, fmt.Errorf("%s line has %d fields, want %d: %w",
			what, len(fields), want, ErrFieldCount)
	}
	return fields, nil
}

func parseInt(what, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, ErrFieldFormat)
	}
	return v, nil
}

func parseFloat(what, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, ErrFieldFormat)
	}
	return v, nil
}

func parseFileIdentity(line string) (FileIdentity, error) {
	var id FileIdentity
	fields, err := splitFields(line, "file identity", fileIdentityFields)
	if err != nil {
		return id, err
	}
	id.StationName = fields[0]
	if id.DeviceID, err = parseInt("device id", fields[1]); err != nil {
		return id, err
	}
	id.RevisionYear = fields[2]
	return id, nil
}

// parseChannelLayout reads the channel-count summary. The analog and digital
// count tokens carry an A/D marker letter; a token without its marker counts
// as zero channels of that class. An inconsistent declaration
// (total != analog + digital) collapses the whole layout to zero.
func parseChannelLayout(line string) (ChannelLayout, error) {
	var l ChannelLayout
	fields, err := splitFields(line, "channel layout", channelLayoutFields)
	if err != nil {
		return l, err
	}
	if l.Total, err = parseInt("total channel count", fields[0]); err != nil {
		return l, err
	}
	if strings.Contains(fields[1], "A") {
		if l.Analog, err = parseInt("analog channel count", strings.ReplaceAll(fields[1], "A", "")); err != nil {
			return l, err
		}
	}
	if strings.Contains(fields[2], "D") {
		if l.Digital, err = parseInt("digital channel count", strings.ReplaceAll(fields[2], "D", "")); err != nil {
			return l, err
		}
	}
	if l.Total != l.Analog+l.Digital {
		return ChannelLayout{}, nil
	}
	return l, nil
}

func parseAnalogChannel(line string) (*AnalogChannel, error) {
	fields, err := splitFields(line, "analog channel", analogChannelFields)
	if err != nil {
		return nil, err
	}

	ch := &AnalogChannel{
		ID:      fields[1],
		Phase:   fields[2],
		Circuit: fields[3],
		Unit:    fields[4],
		PS:      fields[12],
	}
	if ch.Index, err = parseInt("analog channel index", fields[0]); err != nil {
		return nil, err
	}
	numeric := []struct {
		what string
		dst  *float64
		s    string
	}{
		{"scale multiplier", &ch.A, fields[5]},
		{"scale offset", &ch.B, fields[6]},
		{"time skew", &ch.Skew, fields[7]},
		{"minimum", &ch.Min, fields[8]},
		{"maximum", &ch.Max, fields[9]},
		{"primary ratio", &ch.Primary, fields[10]},
		{"secondary ratio", &ch.Secondary, fields[11]},
	}
	for _, f := range numeric {
		if *f.dst, err = parseFloat(f.what, f.s); err != nil {
			return nil, err
		}
	}
	return ch, nil
}

func parseDigitalChannel(line string) (*DigitalChannel, error) {
	fields, err := splitFields(line, "digital channel", digitalChannelFields)
	if err != nil {
		return nil, err
	}

	ch := &DigitalChannel{
		ID:      fields[1],
		Phase:   fields[2],
		Circuit: fields[3],
	}
	if ch.Index, err = parseInt("digital channel index", fields[0]); err != nil {
		return nil, err
	}
	if ch.NormalState, err = parseInt("normal state", fields[4]); err != nil {
		return nil, err
	}
	ch.BitPos = ch.Index % 16
	return ch, nil
}

func parseRateSegment(line string) (RateSegment, error) {
	var seg RateSegment
	fields, err := splitFields(line, "rate segment", rateSegmentFields)
	if err != nil {
		return seg, err
	}
	if seg.Rate, err = parseFloat("sample rate", fields[0]); err != nil {
		return seg, err
	}
	if seg.EndSample, err = parseInt("end sample", fields[1]); err != nil {
		return seg, err
	}
	return seg, nil
}

// parseTimestamp reads a "day/month/year,hour:minute:second" pair. The date
// and time components are parsed but not validated against a calendar.
func parseTimestamp(line string) (Timestamp, error) {
	var ts Timestamp
	fields, err := splitFields(line, "timestamp", timestampFields)
	if err != nil {
		return ts, err
	}

	date := strings.Split(fields[0], "/")
	if len(date) < 3 {
		return ts, fmt.Errorf("timestamp date %q has %d parts, want 3: %w",
			fields[0], len(date), ErrFieldCount)
	}
	clock := strings.Split(fields[1], ":")
	if len(clock) < 3 {
		return ts, fmt.Errorf("timestamp time %q has %d parts, want 3: %w",
			fields[1], len(clock), ErrFieldCount)
	}

	if ts.Day, err = parseInt("day", date[0]); err != nil {
		return ts, err
	}
	if ts.Month, err = parseInt("month", date[1]); err != nil {
		return ts, err
	}
	if ts.Year, err = parseInt("year", date[2]); err != nil {
		return ts, err
	}
	if ts.Hour, err = parseInt("hour", clock[0]); err != nil {
		return ts, err
	}
	if ts.Minute, err = parseInt("minute", clock[1]); err != nil {
		return ts, err
	}
	if ts.Second, err = parseFloat("second", clock[2]); err != nil {
		return ts, err
	}
	return ts, nil
}
