// Package config loads workspace-mcp settings from an optional YAML file.
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "workspace-mcp.yaml"

// Config holds every tunable of the server.
type Config struct {
	DataDir string `yaml:"data_dir"` // base for every relative path below

	Log struct {
		Level string `yaml:"level"` // debug, info, warn or error
		File  string `yaml:"file"`  // empty means <data_dir>/workspace-mcp.log
	} `yaml:"log"`

	Inbox struct {
		Enabled  bool          `yaml:"enabled"`
		Dir      string        `yaml:"dir"`
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"inbox"`

	Outbox string `yaml:"outbox"` // JSON-lines file for outbound notifications

	Export struct {
		Dir           string `yaml:"dir"`
		RespectIgnore bool   `yaml:"respect_ignore"`
	} `yaml:"export"`

	Ignore struct {
		Exclude     []string `yaml:"exclude"`
		MaxFileSize int64    `yaml:"max_file_size"`
	} `yaml:"ignore"`

	Search struct {
		MaxResults   int           `yaml:"max_results"`
		SyncInterval time.Duration `yaml:"sync_interval"` // 0 disables periodic verification
	} `yaml:"search"`

	DevServer struct {
		WorkDir string        `yaml:"work_dir"`
		Command []string      `yaml:"command"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"dev_server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{DataDir: "."}
	cfg.Log.Level = "info"
	cfg.Inbox.Enabled = true
	cfg.Inbox.Dir = "inbox"
	cfg.Inbox.Debounce = 100 * time.Millisecond
	cfg.Outbox = "outbox.jsonl"
	cfg.Export.Dir = "exports"
	cfg.Export.RespectIgnore = true
	cfg.Ignore.MaxFileSize = 1024 * 1024
	cfg.Search.MaxResults = 50
	cfg.Search.SyncInterval = 30 * time.Second
	cfg.DevServer.WorkDir = "projects"
	cfg.DevServer.Command = []string{"npm", "run", "dev"}
	cfg.DevServer.Timeout = 60 * time.Second
	return cfg
}

// Load reads path over the defaults. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	if c.Inbox.Debounce < 0 {
		return fmt.Errorf("inbox debounce must be >= 0")
	}
	if c.Ignore.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be >= 0")
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0")
	}
	if c.Search.SyncInterval < 0 {
		return fmt.Errorf("sync_interval must be >= 0")
	}
	if len(c.DevServer.Command) == 0 || strings.TrimSpace(c.DevServer.Command[0]) == "" {
		return fmt.Errorf("dev_server command is required")
	}
	if c.DevServer.Timeout <= 0 {
		return fmt.Errorf("dev_server timeout must be > 0")
	}
	return nil
}

// Resolve makes every relative path absolute under DataDir.
func (c *Config) Resolve() error {
	dataDir, err := filepath.Abs(c.DataDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	c.DataDir = dataDir

	if c.Log.File == "" {
		c.Log.File = "workspace-mcp.log"
	}
	for _, p := range []*string{&c.Log.File, &c.Inbox.Dir, &c.Outbox, &c.Export.Dir, &c.DevServer.WorkDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dataDir, *p)
		}
	}
	return nil
}
