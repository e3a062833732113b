package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/config"
	"github.com/samcharles93/cadenza/internal/history"
	"github.com/samcharles93/cadenza/internal/logger"
	"github.com/samcharles93/cadenza/internal/safetensors"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/trainer"
)

func historyFlags(backend, path *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "history-backend",
			Usage:       "scalar history store (memory, sqlite)",
			Value:       "memory",
			Destination: backend,
		},
		&cli.StringFlag{
			Name:        "history",
			Usage:       "path to the sqlite history database",
			Destination: path,
		},
	}
}

func openHistory(ctx context.Context, backend, path string) (history.Store, error) {
	if path != "" && backend == "memory" {
		backend = "sqlite"
	}
	store, err := history.NewStore(backend, path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func runCmd() *cli.Command {
	var (
		pipelinePath   string
		inputsPath     string
		outPath        string
		steps          int64
		historyBackend string
		historyPath    string
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Execute training steps of a pipeline",
		Flags: append([]cli.Flag{
			pipelineFlag(&pipelinePath),
			&cli.StringFlag{
				Name:        "inputs",
				Aliases:     []string{"i"},
				Usage:       "safetensors file seeding the state of every step",
				Destination: &inputsPath,
			},
			&cli.Int64Flag{
				Name:        "steps",
				Aliases:     []string{"n"},
				Usage:       "number of steps to run",
				Value:       1,
				Destination: &steps,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write the final step state to this safetensors file",
				Destination: &outPath,
			},
		}, historyFlags(&historyBackend, &historyPath)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyRunConfig(cmd, LoadConfig(), &steps, &historyBackend, &historyPath)
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			cfg, err := config.Load(pipelinePath)
			if err != nil {
				return err
			}
			p, err := trainer.DefaultBuilder().Build(cfg)
			if err != nil {
				return err
			}

			seed := state.New()
			if inputsPath != "" {
				if seed, err = safetensors.LoadState(inputsPath); err != nil {
					return err
				}
				log.Debug("loaded inputs", "path", inputsPath, "keys", seed.Keys())
			}

			store, err := openHistory(ctx, historyBackend, historyPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tr := trainer.New(p, trainer.WithHistory(store), trainer.WithLogger(log))
			log.Info("starting run",
				"pipeline", p.Name,
				"run", tr.RunID(),
				"injectors", len(p.Stages),
				"start_step", tr.CurrentStep(),
				"steps", steps,
			)

			last, err := tr.Run(ctx, int(steps), func(int64) (state.State, error) {
				return seed.Clone(), nil
			})
			if err != nil {
				return err
			}

			describeState(os.Stdout, last)
			if outPath != "" {
				if err := safetensors.SaveState(outPath, last); err != nil {
					return err
				}
				log.Info("wrote state", "path", outPath)
			}
			return nil
		},
	}
}
