// Package config holds the run's process-wide tunables. They are
// loaded once and passed into each pipeline stage explicitly; nothing
// reads them as ambient state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StartDateLayout is the layout for start_date values, both in the
	// tunables file and on the command line.
	StartDateLayout = "2006/01/02 15:04:05"

	DefaultStartDate  = "2017/07/31 00:00:00"
	DefaultVisibility = "public"
)

// Tunables are the policies of one forwarding run.
type Tunables struct {
	// OnlyOriginal forwards only new statuses, dropping boosts and
	// replies.
	OnlyOriginal bool
	// Limit caps how many toots one run considers; 0 means everything
	// the feed page returns.
	Limit int
	// ScratchDir receives downloaded media files. Contents are not
	// cleaned up afterwards.
	ScratchDir string
	// StartDate is a static cutoff: toots published before it are
	// never forwarded. There is no "since last run" cursor.
	StartDate time.Time
	// Visibility is applied to every created toot.
	Visibility string
}

// fileTunables is the YAML shape of the optional tunables file.
// Pointer fields distinguish "absent" from zero values.
type fileTunables struct {
	OnlyOriginal *bool  `yaml:"only_original"`
	Limit        *int   `yaml:"limit"`
	ScratchDir   string `yaml:"scratch_dir"`
	StartDate    string `yaml:"start_date"`
	Visibility   string `yaml:"visibility"`
}

// Default returns the tunables used when no file and no flags are
// given.
func Default() Tunables {
	start, _ := time.Parse(StartDateLayout, DefaultStartDate)
	return Tunables{
		OnlyOriginal: true,
		Limit:        0,
		ScratchDir:   os.TempDir(),
		StartDate:    start,
		Visibility:   DefaultVisibility,
	}
}

// Load reads the tunables file at path, overlays it onto the defaults,
// and validates the result. An empty path yields the defaults.
func Load(path string) (Tunables, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read tunables: %w", err)
	}

	var file fileTunables
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse tunables: %w", err)
	}

	if file.OnlyOriginal != nil {
		cfg.OnlyOriginal = *file.OnlyOriginal
	}
	if file.Limit != nil {
		cfg.Limit = *file.Limit
	}
	if file.ScratchDir != "" {
		cfg.ScratchDir = file.ScratchDir
	}
	if file.StartDate != "" {
		start, err := time.Parse(StartDateLayout, file.StartDate)
		if err != nil {
			return cfg, fmt.Errorf("start_date: %w", err)
		}
		cfg.StartDate = start
	}
	if file.Visibility != "" {
		cfg.Visibility = file.Visibility
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate tunables: %w", err)
	}
	return cfg, nil
}

// Validate checks invariants that must hold regardless of where the
// values came from.
func (t Tunables) Validate() error {
	switch t.Visibility {
	case "direct", "private", "unlisted", "public":
	default:
		return fmt.Errorf("visibility %q: must be direct, private, unlisted or public", t.Visibility)
	}
	if t.Limit < 0 {
		return fmt.Errorf("limit %d: must not be negative", t.Limit)
	}
	if t.ScratchDir == "" {
		return fmt.Errorf("scratch_dir must not be empty")
	}
	return nil
}
