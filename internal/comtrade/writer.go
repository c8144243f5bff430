package comtrade

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteConfig emits a configuration document in the positional .cfg grammar.
// A document written this way parses back to the same field values.
func WriteConfig(w io.Writer, cfg *Config) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s,%d,%s\n",
		cfg.Identity.StationName, cfg.Identity.DeviceID, cfg.Identity.RevisionYear)
	fmt.Fprintf(bw, "%d,%dA,%dD\n", cfg.Layout.Total, cfg.Layout.Analog, cfg.Layout.Digital)

	for _, ch := range cfg.Analogs {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%s,%g,%g,%g,%g,%g,%g,%g,%s\n",
			ch.Index, ch.ID, ch.Phase, ch.Circuit, ch.Unit,
			ch.A, ch.B, ch.Skew, ch.Min, ch.Max, ch.Primary, ch.Secondary, ch.PS)
	}
	for _, ch := range cfg.Digitals {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%d\n",
			ch.Index, ch.ID, ch.Phase, ch.Circuit, ch.NormalState)
	}

	fmt.Fprintf(bw, "%g\n", cfg.LineFrequency)
	fmt.Fprintf(bw, "%d\n", len(cfg.Segments))
	for _, seg := range cfg.Segments {
		fmt.Fprintf(bw, "%g,%d\n", seg.Rate, seg.EndSample)
	}
	fmt.Fprintf(bw, "%s\n", cfg.Start)
	fmt.Fprintf(bw, "%s\n", cfg.Trigger)
	fmt.Fprintf(bw, "%s\n", cfg.Encoding)
	fmt.Fprintf(bw, "%g\n", cfg.TimeMult)

	return bw.Flush()
}

// WriteData emits fixed-stride binary sample records: a 4-byte sample
// number and 4-byte timestamp prefix, one little-endian int16 per analog
// channel, then the 16-channel digital packing words. analog holds one row
// of raw values per sample; digital holds one row of packing words per
// sample. Either may be nil when the layout declares no such channels.
func WriteData(w io.Writer, cfg *Config, analog [][]int16, digital [][]uint16) error {
	records := len(analog)
	if records == 0 {
		records = len(digital)
	}
	if len(analog) > 0 && len(digital) > 0 && len(analog) != len(digital) {
		return fmt.Errorf("analog rows (%d) and digital rows (%d) disagree",
			len(analog), len(digital))
	}

	words := (cfg.Layout.Digital + 15) / 16
	bw := bufio.NewWriter(w)
	for i := 0; i < records; i++ {
		var prefix [recordPrefixBytes]byte
		binary.LittleEndian.PutUint32(prefix[0:4], uint32(i+1))
		binary.LittleEndian.PutUint32(prefix[4:8], uint32(i))
		if _, err := bw.Write(prefix[:]); err != nil {
			return err
		}

		if len(analog) > 0 {
			if len(analog[i]) != cfg.Layout.Analog {
				return fmt.Errorf("record %d has %d analog values, layout declares %d",
					i, len(analog[i]), cfg.Layout.Analog)
			}
			for _, v := range analog[i] {
				if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
					return err
				}
			}
		}
		if words > 0 {
			if len(digital) <= i || len(digital[i]) != words {
				return fmt.Errorf("record %d needs %d digital words", i, words)
			}
			for _, v := range digital[i] {
				if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// WriteRecording writes the .cfg/.dat pair for a document and its raw
// samples under the given base path.
func WriteRecording(basePath string, cfg *Config, analog [][]int16, digital [][]uint16) error {
	cf, err := os.Create(basePath + ConfigExt)
	if err != nil {
		return fmt.Errorf("create configuration file: %w", err)
	}
	defer cf.Close()
	if err := WriteConfig(cf, cfg); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	df, err := os.Create(basePath + DataExt)
	if err != nil {
		return fmt.Errorf("create sample file: %w", err)
	}
	defer df.Close()
	if err := WriteData(df, cfg, analog, digital); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}
