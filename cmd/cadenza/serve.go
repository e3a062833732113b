package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/api"
	"github.com/samcharles93/cadenza/internal/logger"
	"github.com/samcharles93/cadenza/internal/trainer"
)

func serveCmd() *cli.Command {
	var (
		addr           string
		readTimeout    time.Duration
		maxSteps       int64
		historyBackend string
		historyPath    string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the pipeline run API",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-steps",
				Usage:       "largest number of steps a single request may run",
				Value:       10000,
				Destination: &maxSteps,
			},
		}, historyFlags(&historyBackend, &historyPath)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, LoadConfig(), &addr, &maxSteps, &historyBackend, &historyPath)

			store, err := openHistory(ctx, historyBackend, historyPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			server := api.NewServer(api.ServerConfig{
				Builder:  trainer.DefaultBuilder(),
				History:  store,
				Logger:   log,
				MaxSteps: int(maxSteps),
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "history", historyBackend)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
