package models

import "time"

// Config represents the application configuration
type Config struct {
	APIBase string        `yaml:"apiBase"`
	Timeout time.Duration `yaml:"timeout"` // per-request transport timeout, ex: "60s"
	Rooms   []string      `yaml:"rooms"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig holds the per-run archiving options
type ArchiveConfig struct {
	OverwriteFolder     bool   `yaml:"overwriteFolder"`
	DeleteFolder        bool   `yaml:"deleteFolder"`
	ReverseOrder        bool   `yaml:"reverseOrder"`
	DownloadAttachments bool   `yaml:"downloadAttachments"`
	DownloadAvatars     bool   `yaml:"downloadAvatars"`
	DownloadWorkers     int    `yaml:"downloadWorkers"`
	TimestampFormat     string `yaml:"timestampFormat"`
	TextFormat          bool   `yaml:"textFormat"`
	HTMLFormat          bool   `yaml:"htmlFormat"`
	JSONFormat          bool   `yaml:"jsonFormat"`
	OutputDir           string `yaml:"outputDir"`
}

// DefaultArchiveConfig returns the documented option defaults: all
// output formats and downloads enabled, existing folders overwritten,
// the uncompressed folder kept, messages rendered oldest-first.
func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		OverwriteFolder:     true,
		DeleteFolder:        false,
		ReverseOrder:        true,
		DownloadAttachments: true,
		DownloadAvatars:     true,
		DownloadWorkers:     15,
		TimestampFormat:     "2006-01-02T15:04:05",
		TextFormat:          true,
		HTMLFormat:          true,
		JSONFormat:          true,
		OutputDir:           ".",
	}
}

// DefaultConfig returns a Config prefilled with defaults; the loader
// unmarshals the YAML file on top so omitted keys keep their defaults.
func DefaultConfig() Config {
	return Config{
		APIBase: "https://webexapis.com/v1",
		Timeout: 60 * time.Second,
		Archive: DefaultArchiveConfig(),
	}
}
