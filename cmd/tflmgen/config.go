package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the tflmgen configuration file (~/.config/tflmgen/config.yaml).
// Flags and environment variables win over every field.
type Config struct {
	TFLitePath string `yaml:"tflite_path"`
	OutputDir  string `yaml:"output_dir"`
	Python     string `yaml:"python"`

	// Generated project
	TensorArenaSize    *int   `yaml:"tensor_arena_size"`
	InferencesPerCycle *int   `yaml:"inferences_per_cycle"`
	TemplatesDir       string `yaml:"templates_dir"`
	StrictInclude      *bool  `yaml:"strict_include"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tflmgen", "config.yaml")
}

// LoadConfig reads path, or the default location when path is empty. A
// missing default file yields a zero Config; a missing explicit file and a
// malformed file are errors.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") && !c.IsSet("debug") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

func applyTemplatesConfig(c *cli.Command, cfg Config) {
	if cfg.TemplatesDir != "" && !c.IsSet("templates-dir") {
		templatesDir = cfg.TemplatesDir
	}
}

// applyGenerateConfig fills generate options the user did not pass.
func applyGenerateConfig(c *cli.Command, cfg Config, o *generateOptions) {
	if cfg.TFLitePath != "" && !c.IsSet("tflite-path") {
		o.toolRoot = cfg.TFLitePath
	}
	if cfg.Python != "" && !c.IsSet("python") {
		o.python = cfg.Python
	}
	if cfg.TensorArenaSize != nil && !c.IsSet("tensor-arena-size") {
		o.arenaSize = *cfg.TensorArenaSize
	}
	if cfg.InferencesPerCycle != nil && !c.IsSet("inferences-per-cycle") {
		o.inferences = *cfg.InferencesPerCycle
	}
	if cfg.StrictInclude != nil && !c.IsSet("strict-include") {
		o.strictInclude = *cfg.StrictInclude
	}
	applyTemplatesConfig(c, cfg)
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	applyTemplatesConfig(c, cfg)
}
