// COMTRADE Reader - Utility to display contents of COMTRADE recordings
// This program reads a .cfg/.dat pair and displays the channel layout,
// timing metadata, decoded sample values, statistics, and ASCII waveforms.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"comtrade-decoder/internal/comtrade"
	"comtrade-decoder/internal/render"
	"comtrade-decoder/internal/version"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	channels       string
	showSamples    bool
	sampleLimit    int
	showStats      bool
	showGraph      bool
	graphWidth     int
	graphHeight    int
	graphSamples   int
	legacyBits     bool
	ignoreEncoding bool
	showVersion    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "comtrade-reader [recording.cfg]",
	Short: "Display contents of COMTRADE recordings",
	Long: `COMTRADE Reader displays the configuration metadata and decoded channel
data of a COMTRADE recording. Useful for verifying recordings before export
and for quick fault inspection in a terminal.

Display modes:
  --samples    Show decoded channel values as a table
  --stats      Show statistical analysis per channel
  --graph      Draw an ASCII waveform per channel`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("COMTRADE Reader"))
			return
		}
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: recording file required\n")
			cmd.Usage()
			os.Exit(1)
		}
		if err := displayRecording(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVar(&channels, "channels", "all", "channels to inspect (analog, digital, all)")
	rootCmd.Flags().BoolVarP(&showSamples, "samples", "s", false, "display decoded sample values")
	rootCmd.Flags().IntVar(&sampleLimit, "sample-limit", 50, "maximum sample rows to display (0 for all)")
	rootCmd.Flags().BoolVar(&showStats, "stats", false, "show statistical analysis per channel")
	rootCmd.Flags().BoolVarP(&showGraph, "graph", "g", false, "draw an ASCII waveform per channel")
	rootCmd.Flags().IntVar(&graphWidth, "graph-width", 80, "width of the ASCII graph in characters")
	rootCmd.Flags().IntVar(&graphHeight, "graph-height", 20, "height of the ASCII graph in lines")
	rootCmd.Flags().IntVar(&graphSamples, "graph-samples", 1000, "number of samples to include in graph")
	rootCmd.Flags().BoolVar(&legacyBits, "legacy-bits", false, "reproduce historical digital bit addressing")
	rootCmd.Flags().BoolVar(&ignoreEncoding, "ignore-encoding", false, "decode regardless of the declared encoding")
}

// displayRecording reads and displays the contents of a COMTRADE recording
func displayRecording(path string) error {
	opts := comtrade.DecodeOptions{
		LegacyBitAddressing: legacyBits,
		IgnoreEncoding:      ignoreEncoding,
	}
	rec, err := comtrade.OpenRecording(path, opts)
	if err != nil {
		if rec != nil {
			fmt.Printf("Recording status: config=%s data=%s\n",
				rec.ConfigStatus(), rec.DataStatus())
		}
		return err
	}

	fmt.Printf("COMTRADE READER %s\n\n", version.GetFullVersion())
	displayFileInfo(rec)
	displayConfig(rec)

	set, err := rec.Channels(channels)
	if err != nil {
		return err
	}
	if showSamples {
		displaySamples(rec, set)
	}
	if showStats {
		displayStatistics(set)
	}
	if showGraph {
		if err := displayGraphs(rec, set); err != nil {
			return err
		}
	}
	return nil
}

// displayFileInfo shows on-disk information for the recording pair
func displayFileInfo(rec *comtrade.Recording) {
	fmt.Printf("File Information:\n")
	for _, ext := range []string{comtrade.ConfigExt, comtrade.DataExt} {
		name := rec.BasePath + ext
		info, err := os.Stat(name)
		if err != nil {
			fmt.Printf("  %s: missing\n", filepath.Base(name))
			continue
		}
		fmt.Printf("  %s: %d bytes, modified %s\n", filepath.Base(name),
			info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
}

// displayConfig shows the parsed configuration document
func displayConfig(rec *comtrade.Recording) {
	cfg := rec.Config
	fmt.Printf("Recording Metadata:\n")
	fmt.Printf("Station: %s\n", cfg.Identity.StationName)
	fmt.Printf("Device ID: %d\n", cfg.Identity.DeviceID)
	fmt.Printf("Revision: IEEE Std C37.111-%s\n", cfg.Identity.RevisionYear)
	fmt.Printf("Channels: %d total, %d analog, %d digital\n",
		cfg.Layout.Total, cfg.Layout.Analog, cfg.Layout.Digital)
	fmt.Printf("Line Frequency: %g Hz\n", cfg.LineFrequency)
	for i, seg := range cfg.Segments {
		active := ""
		if i == 0 {
			active = " (active)"
		}
		fmt.Printf("Rate Segment %d: %g Hz to sample %d%s\n", i+1, seg.Rate, seg.EndSample, active)
	}
	fmt.Printf("Start: %s\n", cfg.Start)
	fmt.Printf("Trigger: %s\n", cfg.Trigger)
	fmt.Printf("Encoding: %s\n", cfg.Encoding)
	fmt.Printf("Time Multiplier: %g\n", cfg.TimeMult)

	if n := len(rec.TimeVector()); n > 0 {
		duration := float64(n-1) / rec.SampleRate()
		fmt.Printf("Samples: %d (%.6f seconds)\n", n, duration)
	}
	fmt.Println()
}

// displaySamples prints decoded values as one row per sample
func displaySamples(rec *comtrade.Recording, set *comtrade.ChannelSet) {
	rows := set.Len()
	if rows == 0 {
		fmt.Printf("Sample Data: no decoded samples\n\n")
		return
	}
	limit := rows
	if sampleLimit > 0 && sampleLimit < rows {
		limit = sampleLimit
	}

	fmt.Printf("Sample Data (%d of %d rows):\n", limit, rows)
	fmt.Printf("%-8s %-12s", "#", "t (s)")
	for _, name := range set.Names {
		fmt.Printf(" %-14s", name)
	}
	fmt.Println()

	t := rec.TimeVector()
	for i := 0; i < limit; i++ {
		fmt.Printf("%-8d %-12.6f", i, t[i])
		for _, name := range set.Names {
			fmt.Printf(" %-14.4f", set.Values[name][i])
		}
		fmt.Println()
	}
	fmt.Println()
}

// displayStatistics shows per-channel statistics of the decoded values
func displayStatistics(set *comtrade.ChannelSet) {
	if set.Len() == 0 {
		fmt.Printf("Statistics: no decoded samples\n\n")
		return
	}

	fmt.Printf("Statistical Analysis:\n")
	fmt.Printf("%-20s %12s %12s %12s %12s %12s\n",
		"Channel", "Min", "Max", "Mean", "StdDev", "RMS")
	for _, name := range set.Names {
		values := set.Values[name]
		mean, std := stat.MeanStdDev(values, nil)
		var sumSq float64
		for _, v := range values {
			sumSq += v * v
		}
		rms := math.Sqrt(sumSq / float64(len(values)))
		fmt.Printf("%-20s %12.4f %12.4f %12.4f %12.4f %12.4f\n",
			name, floats.Min(values), floats.Max(values), mean, std, rms)
	}
	fmt.Println()
}

// displayGraphs draws each selected channel as an ASCII waveform
func displayGraphs(rec *comtrade.Recording, set *comtrade.ChannelSet) error {
	t := rec.TimeVector()
	renderer := render.NewASCII(render.Options{
		Width:      graphWidth,
		Height:     graphHeight,
		MaxSamples: graphSamples,
	})
	for _, name := range set.Names {
		if err := renderer.Render(os.Stdout, name, t, set.Values[name]); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		fmt.Println()
	}
	if len(set.Names) > 0 {
		fmt.Printf("Legend: * = data point, # = multiple points\n\n")
	}
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
