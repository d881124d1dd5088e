package fallback

import (
	"context"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

type attemptDelegate func(context.Context, quote.Currency, *session.Session) ([]quote.Quote, error)

type mockStrategy struct {
	attemptFn attemptDelegate
	name      string
}

func (m *mockStrategy) Name() string {
	return m.name
}

func (m *mockStrategy) Origin() string {
	return "https://example.com/" + m.name
}

func (m *mockStrategy) Attempt(
	ctx context.Context,
	currency quote.Currency,
	sess *session.Session,
) ([]quote.Quote, error) {
	if m.attemptFn != nil {
		return m.attemptFn(ctx, currency, sess)
	}

	return nil, nil
}
