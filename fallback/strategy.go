package fallback

import (
	"context"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

// Strategy is a single independent quote extraction technique
type Strategy interface {
	// Name returns the configured name of the strategy
	Name() string

	// Origin returns the URL (or logical origin) the strategy extracts from
	Origin() string

	// Attempt extracts the quotes for the given currency
	Attempt(context.Context, quote.Currency, *session.Session) ([]quote.Quote, error)
}

// Stage is a family of strategies. Every member runs when the stage
// is reached, and the stage succeeds if any member yields quotes
type Stage []Strategy

// Chain is the ordered stage list for a single currency
type Chain struct {
	Currency quote.Currency
	Stages   []Stage
}
