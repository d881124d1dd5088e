package fallback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
	"github.com/sig-0/ptax/storage"
)

// SessionOpener acquires the session for a single run
type SessionOpener func(context.Context) (*session.Session, error)

// Pipeline drives a full run: it acquires a session, runs every currency
// chain through the orchestrator, and persists the collected quotes
type Pipeline struct {
	writer       storage.Writer
	orchestrator *Orchestrator
	open         SessionOpener
	logger       *slog.Logger

	chains   []Chain
	interval time.Duration
}

// NewPipeline creates a new run pipeline
func NewPipeline(
	chains []Chain,
	orchestrator *Orchestrator,
	open SessionOpener,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		orchestrator: orchestrator,
		open:         open,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		chains:       chains,
		interval:     24 * time.Hour,
	}

	// Apply the options
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the scheduler-facing name of the pipeline
func (p *Pipeline) Name() string {
	return "ptax"
}

// Interval returns the scheduler-facing run interval of the pipeline
func (p *Pipeline) Interval() time.Duration {
	return p.interval
}

// Fetch acquires a session, runs every chain and returns the collected quotes.
// The session is released on every exit path
func (p *Pipeline) Fetch(ctx context.Context) ([]quote.Quote, error) {
	collector, err := p.collect(ctx)
	if err != nil {
		return nil, err
	}

	return collector.Quotes(), nil
}

// collect runs every chain within a single session
func (p *Pipeline) collect(ctx context.Context) (*Collector, error) {
	sess, err := p.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire session: %w", err)
	}

	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			p.logger.Warn(
				"unable to release session",
				"err", closeErr,
			)
		}
	}()

	collector := NewCollector()

	for _, chain := range p.chains {
		cycle := p.orchestrator.Run(ctx, chain, sess)

		p.logger.Info(
			"currency cycle finished",
			"currency", cycle.Currency,
			"state", cycle.State.String(),
			"quotes", len(cycle.Quotes),
			"attempts", len(cycle.Attempts),
		)

		collector.Add(cycle.Quotes...)
	}

	return collector, nil
}

// Run executes a single run, writing the collected quotes if there are any.
// A write failure is logged and does not fail the run
func (p *Pipeline) Run(ctx context.Context) ([]quote.Quote, error) {
	collector, err := p.collect(ctx)
	if err != nil {
		return nil, err
	}

	quotes := collector.Quotes()

	if !collector.HasData() {
		p.logger.Warn("no quotes collected, skipping write")

		return quotes, nil
	}

	if p.writer == nil {
		return quotes, nil
	}

	if err := p.writer.WriteQuotes(ctx, quotes); err != nil {
		p.logger.Error(
			"unable to write quotes",
			"err", err,
		)

		return quotes, nil
	}

	p.logger.Info(
		"quotes written",
		"count", len(quotes),
	)

	return quotes, nil
}
