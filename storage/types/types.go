package types

import "github.com/sig-0/ptax/quote"

// QuoteQuery filters stored quotes
type QuoteQuery struct {
	Currency *quote.Currency `json:"currency"`
	Source   *string         `json:"source"`
	Offset   int64           `json:"offset"`
	Limit    int32           `json:"limit"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
