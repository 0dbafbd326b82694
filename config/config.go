// Package config loads the planner configuration from a YAML or JSON file
// with K_ prefixed environment overrides, e.g. K_SCHEDULE__WORKERS=6.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/workplan/core/metrics"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/runlog"
	"github.com/kilianp07/workplan/core/scheduler"
	"github.com/kilianp07/workplan/infra/mqtt"
)

type Config struct {
	Schedule scheduler.Settings `json:"schedule"`
	Tasks    TasksConfig        `json:"tasks"`
	Store    runlog.Config      `json:"store"`
	Export   ExportConfig       `json:"export"`
	Metrics  metrics.Config     `json:"metrics"`
	MQTT     mqtt.Config        `json:"mqtt"`
	Server   ServerConfig       `json:"server"`
}

// Load reads path and applies environment overrides. An empty path loads
// the defaults plus the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.normalizeLists()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeLists splits list values that arrived as one comma separated
// string from the environment.
func (c *Config) normalizeLists() {
	if len(c.Schedule.Holidays) == 1 {
		c.Schedule.Holidays = planner.SplitHolidays(c.Schedule.Holidays[0])
	}
	if len(c.Export.Formats) == 1 && strings.Contains(c.Export.Formats[0], ",") {
		c.Export.Formats = strings.Split(c.Export.Formats[0], ",")
	}
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Schedule.SetDefaults()
	c.Tasks.SetDefaults()
	c.Store.SetDefaults()
	c.Export.SetDefaults()
	c.MQTT.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks every section. The start date is only checked when set,
// since callers may supply it per run.
func (c Config) Validate() error {
	validate := c.Schedule.Validate
	if c.Schedule.StartDate == "" {
		validate = c.Schedule.ValidateParams
	}
	if err := validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
