// COMTRADE Decoder - decodes power-system disturbance recordings
// This program parses a COMTRADE configuration/sample file pair into
// calibrated per-channel time series and exports them for analysis.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"comtrade-decoder/internal/comtrade"
	"comtrade-decoder/internal/config"
	"comtrade-decoder/internal/export"
	"comtrade-decoder/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Command line flag variables
var (
	cfgFile        string // Configuration file path
	exportFormat   string // Export format: csv or json
	channels       string // Channel selection: analog, digital, or all
	outputDir      string // Output directory for export files
	legacyBits     bool   // Reproduce historical digital bit addressing
	ignoreEncoding bool   // Decode regardless of the declared encoding
	noExport       bool   // Decode and summarize only
	verbose        bool   // Enable verbose logging
	showVersion    bool   // Show version information
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "comtrade-decoder [recording.cfg]",
	Short: "COMTRADE disturbance recording decoder",
	Long: `COMTRADE Decoder parses a disturbance recording stored as a COMTRADE
configuration file (.cfg) with its binary sample sibling (.dat), reconstructs
the calibrated analog and digital channel time series, and exports them as
CSV or JSON.

The recording may be named by either file of the pair; the sibling is located
by extension.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("COMTRADE Decoder"))
			return
		}
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: recording file required\n")
			cmd.Usage()
			os.Exit(1)
		}
		if err := runDecoder(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./config.yaml", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&exportFormat, "export", "e", "csv", "export format (csv, json)")
	rootCmd.Flags().StringVar(&channels, "channels", "analog", "channels to export (analog, digital, all)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory for export files")
	rootCmd.Flags().BoolVar(&legacyBits, "legacy-bits", false, "reproduce historical digital bit addressing (wrong for channel indices >= 16)")
	rootCmd.Flags().BoolVar(&ignoreEncoding, "ignore-encoding", false, "decode as 16-bit integers regardless of the declared encoding")
	rootCmd.Flags().BoolVar(&noExport, "no-export", false, "decode and print the summary without writing export files")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("export.format", rootCmd.Flags().Lookup("export"))
	viper.BindPFlag("export.channels", rootCmd.Flags().Lookup("channels"))
	viper.BindPFlag("export.output_dir", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("decode.legacy_bit_addressing", rootCmd.Flags().Lookup("legacy-bits"))
	viper.BindPFlag("decode.ignore_encoding", rootCmd.Flags().Lookup("ignore-encoding"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setupLogging routes the standard logger through a rotated file when one
// is configured. Without a file, log output only appears in verbose mode.
func setupLogging(cfg *config.LoggingConfig) {
	if cfg.File == "" {
		if !verbose {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // megabytes after which new file is created
		MaxBackups: 4,  // number of backups
		MaxAge:     180,
		Compress:   true,
	})
}

// runDecoder is the main application logic
func runDecoder(path string) error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	setupLogging(&cfg.Logging)

	opts := comtrade.DecodeOptions{
		LegacyBitAddressing: cfg.Decode.LegacyBitAddressing,
		IgnoreEncoding:      cfg.Decode.IgnoreEncoding,
	}

	rec, err := comtrade.OpenRecording(path, opts)
	if err != nil {
		if rec != nil {
			log.Printf("decode %s failed: config=%s data=%s: %v",
				path, rec.ConfigStatus(), rec.DataStatus(), err)
		}
		if errors.Is(err, comtrade.ErrMissingFile) {
			return fmt.Errorf("recording incomplete: %w", err)
		}
		return err
	}
	log.Printf("decoded %s: %d analog, %d digital, %d samples",
		path, rec.Config.Layout.Analog, rec.Config.Layout.Digital, len(rec.TimeVector()))

	printSummary(rec)

	if noExport {
		return nil
	}

	set, err := rec.Channels(cfg.Export.Channels)
	if err != nil {
		return err
	}
	if len(set.Names) == 0 {
		fmt.Printf("No %s channels to export.\n", cfg.Export.Channels)
		return nil
	}

	name := fmt.Sprintf("%s_%s.%s", filepath.Base(rec.BasePath),
		strings.ToUpper(cfg.Export.Channels), cfg.Export.Format)
	target := filepath.Join(cfg.Export.OutputDir, name)

	switch cfg.Export.Format {
	case "csv":
		err = export.SaveCSV(target, set)
	case "json":
		err = export.SaveJSON(target, rec, set)
	default:
		return fmt.Errorf("unknown export format %q (use csv or json)", cfg.Export.Format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d channels x %d samples to %s\n", len(set.Names), set.Len(), target)
	return nil
}

// printSummary displays the decoded recording's key metadata
func printSummary(rec *comtrade.Recording) {
	id := rec.Config.Identity
	layout := rec.Config.Layout

	fmt.Printf("Station: %s (device %d, IEEE Std C37.111-%s)\n",
		id.StationName, id.DeviceID, id.RevisionYear)
	fmt.Printf("Channels: %d total (%d analog, %d digital)\n",
		layout.Total, layout.Analog, layout.Digital)
	fmt.Printf("Line Frequency: %g Hz\n", rec.Config.LineFrequency)
	if seg, ok := rec.Config.ActiveSegment(); ok {
		fmt.Printf("Sample Rate: %g Hz (%d samples", seg.Rate, seg.EndSample)
		if extra := len(rec.Config.Segments) - 1; extra > 0 {
			fmt.Printf(", %d further rate segments unused", extra)
		}
		fmt.Printf(")\n")
	}
	fmt.Printf("Start: %s\n", rec.Config.Start)
	fmt.Printf("Trigger: %s\n", rec.Config.Trigger)
	fmt.Printf("Encoding: %s (time multiplier %g)\n", rec.Config.Encoding, rec.Config.TimeMult)

	if verbose {
		for _, ch := range rec.Config.Analogs {
			fmt.Printf("  analog %2d: %-16s a=%g b=%g unit=%s\n",
				ch.Index, ch.ID, ch.A, ch.B, ch.Unit)
		}
		for _, ch := range rec.Config.Digitals {
			fmt.Printf("  digital %2d: %-16s bit=%d normal=%d\n",
				ch.Index, ch.ID, ch.BitPos, ch.NormalState)
		}
	}
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
