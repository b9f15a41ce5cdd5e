package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"polycode/task-agent-app/config"
	"polycode/task-agent-app/core"
	"polycode/task-agent-app/gemini"
	"polycode/task-agent-app/logging"
)

// app holds what both commands need: validated config, logger and a way
// to start sessions against the configured model.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	validate *validator.Validate
	llm      core.LLM
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	validate := core.NewValidator()
	if err := cfg.Validate(validate); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	llm, err := gemini.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, validate: validate, llm: llm}, nil
}

func (a *app) newSession() (*core.Session, error) {
	timeout, err := a.cfg.LLM.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	session, err := core.NewSession(a.llm, a.validate, core.SessionOptions{
		SeedDemoTasks: a.cfg.Workspace.SeedDemoTasks,
		Timeout:       timeout,
		Logger:        a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}
