package mock

import (
	"context"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/types"
)

type (
	WriteQuotesDelegate    func(context.Context, []quote.Quote) error
	QuotesDelegate         func(context.Context, *types.QuoteQuery) (*types.Page[quote.Quote], error)
	ListSourcesDelegate    func(context.Context) ([]string, error)
	ListCurrenciesDelegate func(context.Context) ([]quote.Currency, error)
)

type Storage struct {
	WriteQuotesFn    WriteQuotesDelegate
	QuotesFn         QuotesDelegate
	ListSourcesFn    ListSourcesDelegate
	ListCurrenciesFn ListCurrenciesDelegate
}

func (m *Storage) WriteQuotes(ctx context.Context, quotes []quote.Quote) error {
	if m.WriteQuotesFn != nil {
		return m.WriteQuotesFn(ctx, quotes)
	}

	return nil
}

func (m *Storage) Quotes(ctx context.Context, query *types.QuoteQuery) (*types.Page[quote.Quote], error) {
	if m.QuotesFn != nil {
		return m.QuotesFn(ctx, query)
	}

	return nil, nil
}

func (m *Storage) ListSources(ctx context.Context) ([]string, error) {
	if m.ListSourcesFn != nil {
		return m.ListSourcesFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListCurrencies(ctx context.Context) ([]quote.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}

	return nil, nil
}
