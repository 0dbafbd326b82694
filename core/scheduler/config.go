package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/planner"
)

// DefaultMaxDays is the calendar-day ceiling applied when none is configured.
const DefaultMaxDays = 365

// ErrInvalidConfig wraps every engine configuration error.
var ErrInvalidConfig = errors.New("invalid scheduler config")

// Config holds the typed engine parameters.
type Config struct {
	Workers              int         // size of the worker pool
	HoursPerWorkerPerDay int         // effort one worker delivers per working day
	StartDate            time.Time   // simulation starts on the first working day on or after this date
	Holidays             []time.Time // non-working dates on top of weekends
	MaxDays              int         // calendar-day ceiling; 0 means DefaultMaxDays
}

// SetDefaults applies the default ceiling.
func (c *Config) SetDefaults() {
	if c.MaxDays <= 0 {
		c.MaxDays = DefaultMaxDays
	}
}

// Validate checks that the engine can run.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.HoursPerWorkerPerDay <= 0 {
		return fmt.Errorf("%w: hours_per_worker_per_day must be positive, got %d", ErrInvalidConfig, c.HoursPerWorkerPerDay)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalidConfig)
	}
	return nil
}

// Settings is the file and API representation of Config. Dates are
// YYYY-MM-DD strings.
type Settings struct {
	Workers              int      `json:"workers" yaml:"workers"`
	HoursPerWorkerPerDay int      `json:"hours_per_worker_per_day" yaml:"hours_per_worker_per_day"`
	StartDate            string   `json:"start_date" yaml:"start_date"`
	Holidays             []string `json:"holidays" yaml:"holidays"`
	MaxDays              int      `json:"max_days" yaml:"max_days"`
}

// SetDefaults applies the defaults: 4 workers, 10 hours per day and the
// standard day ceiling.
func (s *Settings) SetDefaults() {
	if s.Workers == 0 {
		s.Workers = 4
	}
	if s.HoursPerWorkerPerDay == 0 {
		s.HoursPerWorkerPerDay = 10
	}
	if s.MaxDays == 0 {
		s.MaxDays = DefaultMaxDays
	}
}

// Validate checks the ranges accepted for interactive input.
func (s Settings) Validate() error {
	if err := s.ValidateParams(); err != nil {
		return err
	}
	if strings.TrimSpace(s.StartDate) == "" {
		return fmt.Errorf("%w: start_date is required", ErrInvalidConfig)
	}
	if _, err := model.ParseDate(s.StartDate); err != nil {
		return fmt.Errorf("%w: start_date: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateParams checks everything but the start date, which callers may
// supply per run.
func (s Settings) ValidateParams() error {
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if s.HoursPerWorkerPerDay < 1 || s.HoursPerWorkerPerDay > 24 {
		return fmt.Errorf("%w: hours_per_worker_per_day must be within 1..24", ErrInvalidConfig)
	}
	if s.MaxDays < 0 {
		return fmt.Errorf("%w: max_days must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Resolve validates s and converts it to an engine Config. Malformed
// holidays are dropped and returned as warnings.
func (s Settings) Resolve() (Config, []planner.Warning, error) {
	if err := s.Validate(); err != nil {
		return Config{}, nil, err
	}
	start, _ := model.ParseDate(s.StartDate)
	holidays, warnings := planner.ParseHolidays(s.Holidays)
	cfg := Config{
		Workers:              s.Workers,
		HoursPerWorkerPerDay: s.HoursPerWorkerPerDay,
		StartDate:            start,
		Holidays:             holidays,
		MaxDays:              s.MaxDays,
	}
	cfg.SetDefaults()
	return cfg, warnings, nil
}

// LoadSettings loads Settings from a JSON or YAML file.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeSettings(f, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// DecodeSettings reads from r to decode Settings.
func DecodeSettings(r io.Reader, format string) (Settings, error) {
	var s Settings
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return s, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return s, err
		}
	default:
		return s, fmt.Errorf("unsupported format: %s", format)
	}
	return s, nil
}
