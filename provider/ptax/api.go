package ptax

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

// APIStrategy reads the closing quotes from the structured indicator endpoint
type APIStrategy struct {
	name          string
	url           string
	closingMarker string
}

// NewAPIStrategy creates a new indicator endpoint strategy
func NewAPIStrategy(name, url, closingMarker string) *APIStrategy {
	return &APIStrategy{
		name:          name,
		url:           url,
		closingMarker: closingMarker,
	}
}

func (s *APIStrategy) Name() string {
	return s.name
}

func (s *APIStrategy) Origin() string {
	return s.url
}

func (s *APIStrategy) Attempt(
	ctx context.Context,
	currency quote.Currency,
	sess *session.Session,
) ([]quote.Quote, error) {
	// The payload covers every currency, so it is fetched once per session
	payload, err := sess.Cached("indicators:"+s.url, func() (string, error) {
		resp, err := sess.HTTP().R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			Get(s.url)
		if err != nil {
			return "", fmt.Errorf("%w: unable to execute GET request, %w", ErrNetwork, err)
		}

		if !resp.IsSuccess() {
			return "", fmt.Errorf("%w: invalid status code received: %d", ErrNetwork, resp.StatusCode())
		}

		return resp.String(), nil
	})
	if err != nil {
		return nil, err
	}

	return parseIndicators(payload, currency, s.closingMarker, s.url)
}

// parseIndicators extracts the closing entries for the currency from the
// indicator payload, one quote per entry
func parseIndicators(
	payload string,
	currency quote.Currency,
	closingMarker string,
	source string,
) ([]quote.Quote, error) {
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("%w: malformed indicator payload", ErrParse)
	}

	entries := gjson.Get(payload, "conteudo")
	if !entries.IsArray() {
		return nil, fmt.Errorf("%w: missing indicator list", ErrParse)
	}

	var quotes []quote.Quote

	for i, entry := range entries.Array() {
		if entry.Get("tipoCotacao").String() != closingMarker {
			continue
		}

		name := entry.Get("moeda")
		if !name.Exists() {
			return nil, fmt.Errorf("%w: entry %d is missing the currency name", ErrParse, i)
		}

		c, ok := quote.CurrencyFromName(name.String())
		if !ok || c != currency {
			continue
		}

		var (
			dateRes = entry.Get("dataIndicador")
			buyRes  = entry.Get("valorCompra")
			sellRes = entry.Get("valorVenda")
		)

		if !dateRes.Exists() || !buyRes.Exists() || !sellRes.Exists() {
			return nil, fmt.Errorf("%w: entry %d is missing quote fields", ErrParse, i)
		}

		t, err := time.Parse(time.RFC3339, dateRes.String())
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d date, %w", ErrParse, i, err)
		}

		q, err := quote.New(
			quote.FormatDate(t.UTC()),
			c,
			literal(buyRes),
			literal(sellRes),
			source,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d, %w", ErrParse, i, err)
		}

		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no %q entries for %s", ErrParse, closingMarker, currency)
	}

	return quotes, nil
}

// literal keeps the digits of numeric values as they were sent
func literal(r gjson.Result) string {
	if r.Type == gjson.Number {
		return r.Raw
	}

	return r.String()
}
