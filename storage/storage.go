package storage

import (
	"context"
	"errors"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/types"
)

// ErrWrite is returned when a quote set cannot be persisted
var ErrWrite = errors.New("unable to write quotes")

// Writer persists the quotes of a single run
type Writer interface {
	// WriteQuotes persists the given quotes, in order
	WriteQuotes(context.Context, []quote.Quote) error
}

// Storage is an abstraction over queryable quote data
type Storage interface {
	Writer

	// Quotes fetches the stored quotes matching the query, newest first
	Quotes(context.Context, *types.QuoteQuery) (*types.Page[quote.Quote], error)

	// ListSources lists all present quote sources
	ListSources(context.Context) ([]string, error)

	// ListCurrencies lists all currencies present
	ListCurrencies(context.Context) ([]quote.Currency, error)
}

type multiWriter []Writer

// MultiWriter fans a quote set out to every writer, in order.
// All writers are attempted, and their errors are joined
func MultiWriter(writers ...Writer) Writer {
	return multiWriter(writers)
}

func (m multiWriter) WriteQuotes(ctx context.Context, quotes []quote.Quote) error {
	var errs []error

	for _, w := range m {
		if err := w.WriteQuotes(ctx, quotes); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
