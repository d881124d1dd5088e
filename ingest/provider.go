package ingest

import (
	"context"
	"time"

	"github.com/sig-0/ptax/quote"
)

// Provider is a single scheduled quote source
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns the interval at which the provider should be called
	Interval() time.Duration

	// Fetch is the provider's main fetch job, yielding the quotes of a single run
	Fetch(context.Context) ([]quote.Quote, error)
}
