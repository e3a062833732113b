// Package api serves pipeline runs over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samcharles93/cadenza/internal/config"
	"github.com/samcharles93/cadenza/internal/history"
	"github.com/samcharles93/cadenza/internal/logger"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/trainer"
)

const defaultMaxSteps = 10000

type ServerConfig struct {
	Builder  *trainer.Builder
	History  history.Store
	Logger   logger.Logger
	MaxSteps int
}

type Server struct {
	runs     *RunStore
	builder  *trainer.Builder
	history  history.Store
	log      logger.Logger
	maxSteps int
}

func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		runs:     NewRunStore(),
		builder:  cfg.Builder,
		history:  cfg.History,
		log:      cfg.Logger,
		maxSteps: cfg.MaxSteps,
	}
	if s.builder == nil {
		s.builder = trainer.DefaultBuilder()
	}
	if s.history == nil {
		s.history = history.NewMemoryStore()
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.maxSteps <= 0 {
		s.maxSteps = defaultMaxSteps
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/runs", s.handleCreateRun)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.DELETE("/v1/runs/:id", s.handleDeleteRun)
	e.POST("/v1/runs/:id/steps", s.handleSteps)
	e.GET("/v1/runs/:id/history/:key", s.handleHistory)
	e.GET("/v1/injectors", s.handleInjectors)
	e.GET("/metrics", s.handleMetrics)
}

func (s *Server) handleCreateRun(c *echo.Context) error {
	req, err := decodeJSON[CreateRunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Config) == 0 {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "config is required", "config")
	}
	cfg, err := config.Parse(req.Config, config.FormatJSON)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "configuration_error", err.Error(), "config")
	}
	p, err := s.builder.Build(cfg)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "configuration_error", err.Error(), "config")
	}

	id := history.NewRunID()
	t := trainer.New(p,
		trainer.WithRunID(id),
		trainer.WithHistory(s.history),
		trainer.WithLogger(s.log),
	)
	s.runs.Add(t)
	s.log.Info("run created", "run", id, "pipeline", p.Name, "injectors", len(p.Stages))
	return c.JSON(http.StatusOK, runResponse(t))
}

func (s *Server) handleGetRun(c *echo.Context) error {
	r, ok := s.runs.get(c.Param("id"))
	if !ok {
		return writeNotFound(c, ErrRunNotFound.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.JSON(http.StatusOK, runResponse(r.trainer))
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	if !s.runs.Delete(id) {
		return writeNotFound(c, ErrRunNotFound.Error())
	}
	s.log.Info("run deleted", "run", id)
	return c.JSON(http.StatusOK, DeleteResponse{ID: id, Object: "run.deleted", Deleted: true})
}

func (s *Server) handleSteps(c *echo.Context) error {
	id := c.Param("id")
	r, ok := s.runs.get(id)
	if !ok {
		return writeNotFound(c, ErrRunNotFound.Error())
	}
	req, err := decodeJSON[StepRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Steps == 0 {
		req.Steps = 1
	}
	if req.Steps < 0 || req.Steps > s.maxSteps {
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("steps must be between 1 and %d", s.maxSteps), "steps")
	}

	seed := state.New()
	for key, in := range req.Inputs {
		seed[key] = in.Value
	}
	feed := func(int64) (state.State, error) { return seed.Clone(), nil }

	r.mu.Lock()
	defer r.mu.Unlock()
	last, err := r.trainer.Run(c.Request().Context(), req.Steps, feed)
	if err != nil {
		var se *trainer.StepError
		if errors.As(err, &se) {
			return writeError(c, http.StatusUnprocessableEntity, "step_error", err.Error(), se.Type)
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	return c.JSON(http.StatusOK, summarizeState(id, r.trainer.CurrentStep()-1, last))
}

func (s *Server) handleHistory(c *echo.Context) error {
	id := c.Param("id")
	if !history.ValidRunID(id) {
		return writeBadRequest(c, "invalid run id")
	}
	key := c.Param("key")
	points, err := s.history.Series(c.Request().Context(), id, key)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	if _, live := s.runs.get(id); !live && len(points) == 0 {
		return writeNotFound(c, ErrRunNotFound.Error())
	}
	return c.JSON(http.StatusOK, HistoryResponse{RunID: id, Object: "run.history", Key: key, Points: points})
}

func (s *Server) handleInjectors(c *echo.Context) error {
	return c.JSON(http.StatusOK, InjectorsResponse{Object: "list", Data: s.builder.Injectors.Types()})
}

func (s *Server) handleMetrics(c *echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

func runResponse(t *trainer.Trainer) RunResponse {
	p := t.Pipeline()
	return RunResponse{
		ID:        t.RunID(),
		Object:    "run",
		Name:      p.Name,
		Step:      t.CurrentStep(),
		Injectors: p.Types(),
	}
}
