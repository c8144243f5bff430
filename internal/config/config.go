// Package config provides configuration structures and defaults for the
// COMTRADE decoder tools
package config

// Config represents the complete application configuration
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`  // Sample decoding settings
	Export  ExportConfig  `yaml:"export"`  // Channel data export settings
	Logging LoggingConfig `yaml:"logging"` // Logging configuration
}

// DecodeConfig selects the decoder's compatibility behavior
type DecodeConfig struct {
	// LegacyBitAddressing tests digital bits by absolute channel index, the
	// historical behavior that reads the wrong bit for indices >= 16
	LegacyBitAddressing bool `yaml:"legacy_bit_addressing"`

	// IgnoreEncoding decodes the sample body as 16-bit integers even when
	// the configuration declares another encoding
	IgnoreEncoding bool `yaml:"ignore_encoding"`
}

// ExportConfig contains channel data export parameters
type ExportConfig struct {
	Format    string `yaml:"format"`     // Export format: "csv" or "json"
	Channels  string `yaml:"channels"`   // Channel selection: analog, digital, or all
	OutputDir string `yaml:"output_dir"` // Output directory for export files
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `yaml:"level"` // Log level (debug, info, warn, error)
	File  string `yaml:"file"`  // Log file path, rotated when set
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			LegacyBitAddressing: false, // Re-based bit addressing by default
			IgnoreEncoding:      false, // Refuse non-binary encodings by default
		},
		Export: ExportConfig{
			Format:    "csv",    // Spreadsheet-friendly default
			Channels:  "analog", // Analog channels by default
			OutputDir: ".",      // Current directory
		},
		Logging: LoggingConfig{
			Level: "info", // Info level logging
			File:  "",     // Stderr only unless a file is configured
		},
	}
}
