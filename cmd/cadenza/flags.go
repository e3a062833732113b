package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool
)

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

func pipelineFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "path to pipeline file (.yaml or .json)",
		Required:    true,
		Destination: dst,
	}
}

// setupLogging builds the logger from flags and the user config file and
// stores it in the context for every subcommand.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	applyLoggingConfig(cmd, LoadConfig())
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	log, err := logger.ForFormat(logFormat, os.Stderr, level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}
