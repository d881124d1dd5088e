package ptax

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

// DirectHTMLStrategy reads the latest closing quote from a closing-rate page
type DirectHTMLStrategy struct {
	name          string
	url           string
	tableSelector string
}

// NewDirectHTMLStrategy creates a new closing-rate page strategy.
// An empty table selector picks the first table with a summary,
// then the first table of the page
func NewDirectHTMLStrategy(name, url, tableSelector string) *DirectHTMLStrategy {
	return &DirectHTMLStrategy{
		name:          name,
		url:           url,
		tableSelector: tableSelector,
	}
}

func (s *DirectHTMLStrategy) Name() string {
	return s.name
}

func (s *DirectHTMLStrategy) Origin() string {
	return s.url
}

func (s *DirectHTMLStrategy) Attempt(
	ctx context.Context,
	currency quote.Currency,
	sess *session.Session,
) ([]quote.Quote, error) {
	resp, err := sess.HTTP().R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to execute GET request, %w", ErrNetwork, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: invalid status code received: %d", ErrNetwork, resp.StatusCode())
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to construct query doc, %w", ErrNoTableFound, err)
	}

	table := s.findTable(doc)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTableFound, s.url)
	}

	// The first row is the header
	row := ownRows(table).Eq(1)
	if row.Length() == 0 {
		return nil, fmt.Errorf("%w: missing data row", ErrMalformedRow)
	}

	q, err := rowQuote(cellTexts(row), currency, s.url)
	if err != nil {
		return nil, err
	}

	return []quote.Quote{q}, nil
}

func (s *DirectHTMLStrategy) findTable(doc *goquery.Document) *goquery.Selection {
	if s.tableSelector != "" {
		return doc.Find(s.tableSelector).First()
	}

	if table := doc.Find("table[summary]").First(); table.Length() > 0 {
		return table
	}

	return doc.Find("table").First()
}
