package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tflmgen/internal/toolchain"
)

var (
	configFile   string
	logLevel     string
	logFormat    string
	debug        bool
	templatesDir string

	// cfg is loaded once by the root Before hook.
	cfg Config
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "path to config.yaml (default: user config dir)",
		Sources:     cli.EnvVars(envConfig),
		Destination: &configFile,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func templatesDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "templates-dir",
		Usage:       "directory whose files replace the embedded templates of the same name",
		Destination: &templatesDir,
	}
}

func toolRootFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "tflite-path",
		Usage:       "tflite-micro checkout holding the generator scripts",
		Sources:     cli.EnvVars(toolchain.EnvToolRoot),
		Destination: dst,
	}
}
