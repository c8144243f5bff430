// COMTRADE Gen - synthetic recording generator
// This program writes a .cfg/.dat pair with sinusoidal analog channels and
// toggling digital channels, for decoder testing and demos.
package main

import (
	"fmt"
	"math"
	"os"

	"comtrade-decoder/internal/comtrade"
	"comtrade-decoder/internal/version"

	"github.com/spf13/cobra"
)

var (
	basePath     string
	station      string
	analogCount  int
	digitalCount int
	sampleRate   float64
	sampleCount  int
	signalFreq   float64
	amplitude    float64
	showVersion  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "comtrade-gen",
	Short: "Generate synthetic COMTRADE recordings",
	Long: `COMTRADE Gen writes a synthetic recording pair (.cfg and .dat) with
phase-shifted sinusoidal analog channels and toggling digital channels.
The output decodes with comtrade-decoder and comtrade-reader, which makes
it useful as a test fixture and a demo input.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersionInfo("COMTRADE Gen"))
			return
		}
		if err := generate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().StringVarP(&basePath, "output", "o", "./synthetic", "base path of the recording pair (without extension)")
	rootCmd.Flags().StringVar(&station, "station", "SYNTH", "station name written to the configuration")
	rootCmd.Flags().IntVarP(&analogCount, "analog", "a", 3, "number of analog channels")
	rootCmd.Flags().IntVarP(&digitalCount, "digital", "d", 2, "number of digital channels")
	rootCmd.Flags().Float64VarP(&sampleRate, "rate", "r", 4000, "sample rate in Hz")
	rootCmd.Flags().IntVarP(&sampleCount, "samples", "n", 400, "number of samples")
	rootCmd.Flags().Float64VarP(&signalFreq, "frequency", "f", 50, "analog signal frequency in Hz")
	rootCmd.Flags().Float64Var(&amplitude, "amplitude", 10000, "peak raw amplitude of the analog signal")
}

// generate builds the configuration document and sample records and writes
// the recording pair.
func generate() error {
	cfg := buildConfig()

	analog := make([][]int16, sampleCount)
	words := (digitalCount + 15) / 16
	digital := make([][]uint16, sampleCount)

	for i := 0; i < sampleCount; i++ {
		t := float64(i) / sampleRate

		row := make([]int16, analogCount)
		for ch := 0; ch < analogCount; ch++ {
			// Phases 120 degrees apart, like a three-phase system.
			phase := 2 * math.Pi * float64(ch) / 3
			row[ch] = int16(amplitude * math.Sin(2*math.Pi*signalFreq*t+phase))
		}
		analog[i] = row

		wordRow := make([]uint16, words)
		for ch := 0; ch < digitalCount; ch++ {
			// Channel k toggles every 2^k samples.
			if (i>>uint(ch))&1 == 1 {
				bitPos := cfg.Digitals[ch].BitPos
				wordRow[ch/16] |= 1 << uint(bitPos)
			}
		}
		digital[i] = wordRow
	}

	if err := comtrade.WriteRecording(basePath, cfg, analog, digital); err != nil {
		return err
	}

	fmt.Printf("Wrote %s%s and %s%s\n", basePath, comtrade.ConfigExt, basePath, comtrade.DataExt)
	fmt.Printf("Channels: %d analog, %d digital | %d samples at %g Hz\n",
		analogCount, digitalCount, sampleCount, sampleRate)
	return nil
}

// buildConfig assembles a parsed-equivalent configuration document for the
// synthetic recording.
func buildConfig() *comtrade.Config {
	cfg := &comtrade.Config{
		Status: comtrade.StatusParsed,
		Identity: comtrade.FileIdentity{
			StationName:  station,
			DeviceID:     1,
			RevisionYear: "1999",
		},
		Layout: comtrade.ChannelLayout{
			Total:   analogCount + digitalCount,
			Analog:  analogCount,
			Digital: digitalCount,
		},
		LineFrequency: 50,
		Segments: []comtrade.RateSegment{
			{Rate: sampleRate, EndSample: sampleCount},
		},
		Start:    comtrade.Timestamp{Day: 1, Month: 1, Year: 2026, Second: 0},
		Trigger:  comtrade.Timestamp{Day: 1, Month: 1, Year: 2026, Second: 0.5},
		Encoding: "binary",
		TimeMult: 1,
	}

	phases := []string{"A", "B", "C"}
	for ch := 0; ch < analogCount; ch++ {
		cfg.Analogs = append(cfg.Analogs, &comtrade.AnalogChannel{
			Index:     ch + 1,
			ID:        fmt.Sprintf("U%s", phases[ch%len(phases)]),
			Phase:     phases[ch%len(phases)],
			Circuit:   "GEN",
			Unit:      "V",
			A:         0.01,
			B:         0,
			Min:       -32767,
			Max:       32767,
			Primary:   1,
			Secondary: 1,
			PS:        "p",
		})
	}
	for ch := 0; ch < digitalCount; ch++ {
		cfg.Digitals = append(cfg.Digitals, &comtrade.DigitalChannel{
			Index:   ch + 1,
			ID:      fmt.Sprintf("ST%d", ch+1),
			Circuit: "GEN",
			BitPos:  (ch + 1) % 16,
		})
	}
	return cfg
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
