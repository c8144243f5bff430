// Package export serializes decoded channel data for downstream tooling.
// The CSV layout is a compatibility contract: a header row of channel names
// followed by one row per sample with fixed two-decimal formatting, matching
// the historical export byte for byte.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"comtrade-decoder/internal/comtrade"
)

// WriteCSV writes a channel set as comma-delimited text. Channels become
// columns in set order, samples become rows, and every value is rendered
// with the fixed %.2f format.
func WriteCSV(w io.Writer, set *comtrade.ChannelSet) error {
	bw := bufio.NewWriter(w)

	for i, name := range set.Names {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString(name)
	}
	bw.WriteByte('\n')

	rows := set.Len()
	for i := 0; i < rows; i++ {
		for j, name := range set.Names {
			if j > 0 {
				bw.WriteByte(',')
			}
			fmt.Fprintf(bw, "%.2f", set.Values[name][i])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SaveCSV writes the channel set to a file.
func SaveCSV(path string, set *comtrade.ChannelSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, set); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// document is the JSON export layout.
type document struct {
	Station    string               `json:"station"`
	SampleRate float64              `json:"sample_rate_hz"`
	Samples    int                  `json:"samples"`
	Time       []float64            `json:"time_s"`
	Channels   []string             `json:"channels"`
	Values     map[string][]float64 `json:"values"`
}

// WriteJSON writes the channel set together with its time vector and
// recording metadata as indented JSON.
func WriteJSON(w io.Writer, rec *comtrade.Recording, set *comtrade.ChannelSet) error {
	doc := document{
		SampleRate: rec.SampleRate(),
		Samples:    set.Len(),
		Time:       rec.TimeVector(),
		Channels:   set.Names,
		Values:     set.Values,
	}
	if rec.Config != nil {
		doc.Station = rec.Config.Identity.StationName
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// SaveJSON writes the JSON export to a file.
func SaveJSON(path string, rec *comtrade.Recording, set *comtrade.ChannelSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer f.Close()
	if err := WriteJSON(f, rec, set); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
