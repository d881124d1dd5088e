package ptax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

// RenderedDOMStrategy reads the quote from a page that only carries
// the rate table after script execution
type RenderedDOMStrategy struct {
	name   string
	url    string
	marker string
}

// NewRenderedDOMStrategy creates a new rendered page strategy.
// An empty marker matches on the currency name
func NewRenderedDOMStrategy(name, url, marker string) *RenderedDOMStrategy {
	return &RenderedDOMStrategy{
		name:   name,
		url:    url,
		marker: marker,
	}
}

func (s *RenderedDOMStrategy) Name() string {
	return s.name
}

func (s *RenderedDOMStrategy) Origin() string {
	return s.url
}

func (s *RenderedDOMStrategy) Attempt(
	ctx context.Context,
	currency quote.Currency,
	sess *session.Session,
) ([]quote.Quote, error) {
	renderer, err := sess.Renderer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrElementNotFound, err)
	}

	markup, err := renderer.Render(ctx, s.url)
	if err != nil {
		if errors.Is(err, session.ErrRenderTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to construct query doc, %w", ErrElementNotFound, err)
	}

	marker := s.marker
	if marker == "" {
		marker = currency.Name()
	}

	row := markerRow(doc, marker)
	if row == nil {
		return nil, fmt.Errorf("%w: no table row with %q", ErrElementNotFound, marker)
	}

	cells := cellTexts(row)

	// Skip the label cell, if the row has one
	if len(cells) > 0 && strings.Contains(cells[0], marker) {
		cells = cells[1:]
	}

	q, err := rowQuote(cells, currency, s.url)
	if err != nil {
		return nil, err
	}

	return []quote.Quote{q}, nil
}

// markerRow returns the first row containing the marker, from the first
// table containing it. Nested tables take precedence over their parents
func markerRow(doc *goquery.Document, marker string) *goquery.Selection {
	var row *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if !strings.Contains(table.Text(), marker) {
			return true
		}

		nested := table.Find("table").FilterFunction(func(_ int, inner *goquery.Selection) bool {
			return strings.Contains(inner.Text(), marker)
		})
		if nested.Length() > 0 {
			return true // a nested table is visited later
		}

		ownRows(table).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if strings.Contains(tr.Text(), marker) {
				row = tr

				return false
			}

			return true
		})

		return row == nil
	})

	return row
}
