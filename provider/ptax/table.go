package ptax

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/ptax/quote"
)

// ownRows returns the rows of the table, excluding the rows of nested tables
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// cellTexts returns the trimmed text of each row cell
func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td, th")
	texts := make([]string, 0, cells.Length())

	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.Join(strings.Fields(cell.Text()), " "))
	})

	return texts
}

// rowQuote reads the date, buy and sell cells (in that order)
func rowQuote(cells []string, currency quote.Currency, source string) (quote.Quote, error) {
	if len(cells) < 3 {
		return quote.Quote{}, fmt.Errorf("%w: expected 3 cells, got %d", ErrMalformedRow, len(cells))
	}

	q, err := quote.New(cells[0], currency, cells[1], cells[2], source)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}

	return q, nil
}
