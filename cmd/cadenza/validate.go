package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/config"
	"github.com/samcharles93/cadenza/internal/trainer"
)

func validateCmd() *cli.Command {
	var pipelinePath string

	return &cli.Command{
		Name:  "validate",
		Usage: "Build every model and injector of a pipeline without running it",
		Flags: []cli.Flag{pipelineFlag(&pipelinePath)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(pipelinePath)
			if err != nil {
				return err
			}
			if _, err := trainer.DefaultBuilder().Build(cfg); err != nil {
				return err
			}
			describePipeline(os.Stdout, cfg)
			return nil
		},
	}
}

func describePipeline(w io.Writer, cfg *config.Pipeline) {
	name := cfg.Name
	if name == "" {
		name = "(unnamed)"
	}
	_, _ = fmt.Fprintf(w, "pipeline %s: %d injectors, %d models\n", name, len(cfg.Injectors), len(cfg.ModelNames()))
	for i, ic := range cfg.Injectors {
		in := strings.Join(ic.In.Names(), ",")
		if in == "" {
			in = "-"
		}
		_, _ = fmt.Fprintf(w, "  %2d  %-16s %s -> %s\n", i, ic.Type, in, strings.Join(ic.Out.Names(), ","))
	}
}
