package config

import (
	"github.com/kilianp07/workplan/pkg/export"
)

// TasksConfig locates the task table.
type TasksConfig struct {
	// Path is a CSV, YAML or JSON task file.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *TasksConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "tasks.csv"
	}
}

// ExportConfig selects where and how results are written after a run.
type ExportConfig struct {
	Dir      string   `json:"dir"`
	Basename string   `json:"basename"`
	Formats  []string `json:"formats"`
}

// SetDefaults applies sane defaults. No formats means no export.
func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if c.Basename == "" {
		c.Basename = "schedule"
	}
}

// Validate rejects unknown formats.
func (c ExportConfig) Validate() error {
	_, err := export.ParseFormats(c.Formats)
	return err
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every API call.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
