package server

import "github.com/sig-0/ptax/quote"

type SourcesResponse struct {
	Results []string `json:"results"`
}

type CurrenciesResponse struct {
	Results []quote.Currency `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
