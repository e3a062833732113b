package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the user config file (~/.config/cadenza/config.yaml). Pointer
// fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	HistoryBackend string `yaml:"history_backend"`
	HistoryPath    string `yaml:"history_path"`

	Steps *int64 `yaml:"steps"`

	ServerAddress string `yaml:"server_address"`
	MaxSteps      *int64 `yaml:"max_steps"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cadenza", "config.yaml")
}

// LoadConfig reads the user config file. A missing or unreadable file gives
// a zero Config.
func LoadConfig() Config {
	return loadConfigFrom(configPath())
}

func loadConfigFrom(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// flagSetter is the part of *cli.Command the apply functions need.
type flagSetter interface {
	IsSet(name string) bool
}

var _ flagSetter = (*cli.Command)(nil)

func applyLoggingConfig(c flagSetter, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyHistoryConfig applies history store defaults when the flags were not
// given explicitly.
func applyHistoryConfig(c flagSetter, cfg Config, backend, path *string) {
	if cfg.HistoryBackend != "" && !c.IsSet("history-backend") {
		*backend = cfg.HistoryBackend
	}
	if cfg.HistoryPath != "" && !c.IsSet("history") {
		*path = cfg.HistoryPath
		if !c.IsSet("history-backend") && cfg.HistoryBackend == "" {
			*backend = "sqlite"
		}
	}
}

func applyRunConfig(c flagSetter, cfg Config, steps *int64, backend, path *string) {
	if cfg.Steps != nil && !c.IsSet("steps") {
		*steps = *cfg.Steps
	}
	applyHistoryConfig(c, cfg, backend, path)
}

func applyServeConfig(c flagSetter, cfg Config, addr *string, maxSteps *int64, backend, path *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxSteps != nil && !c.IsSet("max-steps") {
		*maxSteps = *cfg.MaxSteps
	}
	applyHistoryConfig(c, cfg, backend, path)
}
