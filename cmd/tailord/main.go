package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailor/internal/compiler"
	"tailor/internal/config"
	"tailor/internal/daemon"
	"tailor/internal/history"
	"tailor/internal/logging"
	"tailor/internal/pipeline"
	"tailor/internal/services/claude"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		os.Exit(1)
	}

	engine := compiler.New(compiler.Config{
		Command:      cfg.LaTeX.Command,
		ScratchRoot:  cfg.Paths.ScratchDir,
		Timeout:      time.Duration(cfg.LaTeX.CompileTimeoutSeconds) * time.Second,
		Passes:       cfg.LaTeX.Passes,
		ExcerptLimit: cfg.LaTeX.ErrorExcerptLimit,
	}, compiler.WithLogger(logger))

	if banner, err := engine.CheckAvailable(ctx); err != nil {
		logger.Warn("latex compiler probe failed", logging.Error(err))
	} else {
		logger.Info("latex compiler detected", logging.String("version", banner))
	}

	client := claude.NewClient(claude.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		MaxTokens:      cfg.LLM.MaxTokens,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, claude.WithRetryMaxAttempts(cfg.LLM.RetryMaxAttempts))

	runner := pipeline.NewRunner(client, engine,
		cfg.Pipeline.MaxFixAttempts,
		cfg.Pipeline.MaxShrinkAttempts,
		cfg.Pipeline.TargetPages,
		pipeline.WithLogger(logger))

	d, err := daemon.New(cfg, runner, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("tailord shutting down")
}
