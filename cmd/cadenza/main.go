package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "cadenza",
		Usage:   "Config-driven training step pipelines",
		Version: version.String(),
		Flags:   loggingFlags(),
		Before:  setupLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			runCmd(),
			validateCmd(),
			serveCmd(),
			inspectCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
