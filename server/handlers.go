package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/types"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)
)

var (
	errUnableToFetchQuotes     = errors.New("unable to fetch quotes")
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")
	errUnableToFetchSources    = errors.New("unable to fetch sources")

	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
)

// Quotes serves the stored quotes, newest first.
// The currency is taken from the route, or the currency query param
func (s *Server) Quotes(w http.ResponseWriter, r *http.Request) {
	var (
		currencyParam = chi.URLParam(r, "currency")

		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")
		sourceParam = r.URL.Query().Get("source")
	)

	if currencyParam == "" {
		currencyParam = r.URL.Query().Get("currency")
	}

	// Parse the currency (optional)
	currency, err := parseCurrency(currencyParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.QuoteQuery{
		Currency: currency,
		Source:   parseSource(sourceParam),
		Limit:    limit,
		Offset:   offset,
	}

	page, err := s.storage.Quotes(r.Context(), q)
	if err != nil {
		s.logger.Debug(
			"unable to fetch quotes",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchQuotes,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch sources",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSources,
		)

		return
	}

	resp := &SourcesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCurrencies(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCurrencies,
		)

		return
	}

	resp := &CurrenciesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseCurrency(raw string) (*quote.Currency, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}

	c, err := quote.ParseCurrency(v)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func parseSource(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	return &v
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n)
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
