// Package setup wires the acquisition pipeline from the run configuration.
// It is shared by the fetch and serve commands
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/fallback"
	"github.com/sig-0/ptax/provider/ptax"
	"github.com/sig-0/ptax/session"
)

// Overrides are the command-line overrides applied on top of the configuration
type Overrides struct {
	OutputPath string
	NoRender   bool
}

// Config reads the configuration at the given path (defaults if empty),
// applies the overrides and validates the result
func Config(path string, overrides Overrides) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if path != "" {
		read, err := config.Read(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}

		cfg = read
	}

	if overrides.OutputPath != "" {
		cfg.OutputPath = overrides.OutputPath
	}

	if overrides.NoRender {
		cfg.Render.Enabled = false
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	return cfg, nil
}

// Logger creates the command logger at the given level
func Logger(level string) (*slog.Logger, error) {
	var l slog.Level

	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})), nil
}

// Pipeline builds the acquisition pipeline for the configuration
func Pipeline(
	cfg *config.Config,
	logger *slog.Logger,
	opts ...fallback.PipelineOption,
) (*fallback.Pipeline, error) {
	chains, err := ptax.Chains(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to build strategy chains: %w", err)
	}

	defaults, err := fallback.DefaultsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to build default quotes: %w", err)
	}

	orchestrator, err := fallback.NewOrchestrator(
		defaults,
		fallback.WithLogger(logger),
		fallback.WithDefaultSource(cfg.DefaultSource),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create orchestrator: %w", err)
	}

	open := func(ctx context.Context) (*session.Session, error) {
		return session.Open(ctx, cfg, session.WithLogger(logger))
	}

	pipelineOpts := []fallback.PipelineOption{
		fallback.WithPipelineLogger(logger),
		fallback.WithInterval(cfg.Schedule.IntervalDuration()),
	}

	return fallback.NewPipeline(
		chains,
		orchestrator,
		open,
		append(pipelineOpts, opts...)...,
	), nil
}
