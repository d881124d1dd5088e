package fallback

import (
	"log/slog"
	"time"

	"github.com/sig-0/ptax/storage"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithClock specifies the clock used to date synthesized default quotes.
// Defaults to the current time in America/Sao_Paulo
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithDefaultSource specifies the provenance of synthesized default quotes
func WithDefaultSource(source string) Option {
	return func(o *Orchestrator) {
		o.defaultSource = source
	}
}

type PipelineOption func(p *Pipeline)

// WithPipelineLogger specifies the logger for the pipeline
func WithPipelineLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithWriter specifies the writer the pipeline persists a run's quotes to
func WithWriter(w storage.Writer) PipelineOption {
	return func(p *Pipeline) {
		p.writer = w
	}
}

// WithInterval specifies the interval at which the scheduler runs the pipeline
func WithInterval(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.interval = d
	}
}
