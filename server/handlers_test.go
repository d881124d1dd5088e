package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/mock"
	"github.com/sig-0/ptax/storage/types"
)

func TestHandlers_Quotes(t *testing.T) {
	t.Parallel()

	t.Run("invalid currency", func(t *testing.T) {
		t.Parallel()

		var called bool

		storage := &mock.Storage{
			QuotesFn: func(context.Context, *types.QuoteQuery) (*types.Page[quote.Quote], error) {
				called = true

				return nil, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/VES", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "VES",
		})

		w := httptest.NewRecorder()
		s.Quotes(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes?limit=nope", http.NoBody)

		w := httptest.NewRecorder()
		s.Quotes(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			QuotesFn: func(context.Context, *types.QuoteQuery) (*types.Page[quote.Quote], error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes", http.NoBody)

		w := httptest.NewRecorder()
		s.Quotes(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, errUnableToFetchQuotes.Error(), resp.Error)
	})

	t.Run("route currency", func(t *testing.T) {
		t.Parallel()

		var (
			capturedQuery *types.QuoteQuery

			expected, _ = quote.New("14/03/2025", quote.USD, "5,7456", "5,7462", "bcb-api")
		)

		storage := &mock.Storage{
			QuotesFn: func(_ context.Context, query *types.QuoteQuery) (*types.Page[quote.Quote], error) {
				capturedQuery = query

				return &types.Page[quote.Quote]{
					Results: []quote.Quote{expected},
					Total:   1,
				}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/usd?source=bcb-api&limit=10&offset=2", http.NoBody)
		req = withRouteParams(t, req, map[string]string{
			"currency": "usd",
		})

		w := httptest.NewRecorder()
		s.Quotes(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, capturedQuery)

		require.NotNil(t, capturedQuery.Currency)
		assert.Equal(t, quote.USD, *capturedQuery.Currency)

		require.NotNil(t, capturedQuery.Source)
		assert.Equal(t, "bcb-api", *capturedQuery.Source)

		assert.Equal(t, int32(10), capturedQuery.Limit)
		assert.Equal(t, int64(2), capturedQuery.Offset)

		var page types.Page[quote.Quote]

		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, []quote.Quote{expected}, page.Results)
	})

	t.Run("query currency", func(t *testing.T) {
		t.Parallel()

		var capturedQuery *types.QuoteQuery

		storage := &mock.Storage{
			QuotesFn: func(_ context.Context, query *types.QuoteQuery) (*types.Page[quote.Quote], error) {
				capturedQuery = query

				return &types.Page[quote.Quote]{}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes?currency=EUR", http.NoBody)

		w := httptest.NewRecorder()
		s.Quotes(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, capturedQuery)
		require.NotNil(t, capturedQuery.Currency)

		assert.Equal(t, quote.EUR, *capturedQuery.Currency)
		assert.Nil(t, capturedQuery.Source)
		assert.Equal(t, defaultLimit, capturedQuery.Limit)
	})
}

func TestHandlers_Sources(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{
				ListSourcesFn: func(context.Context) ([]string, error) {
					return nil, errors.New("boom")
				},
			},
			logger: noopLogger,
		}

		w := httptest.NewRecorder()
		s.Sources(w, httptest.NewRequest(http.MethodGet, "/v1/sources", http.NoBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		expected := []string{"bcb-api", "default"}

		s := &Server{
			storage: &mock.Storage{
				ListSourcesFn: func(context.Context) ([]string, error) {
					return expected, nil
				},
			},
			logger: noopLogger,
		}

		w := httptest.NewRecorder()
		s.Sources(w, httptest.NewRequest(http.MethodGet, "/v1/sources", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, expected, decodeListResults(t, w))
	})
}

func TestHandlers_Currencies(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{
				ListCurrenciesFn: func(context.Context) ([]quote.Currency, error) {
					return nil, errors.New("boom")
				},
			},
			logger: noopLogger,
		}

		w := httptest.NewRecorder()
		s.Currencies(w, httptest.NewRequest(http.MethodGet, "/v1/currencies", http.NoBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{
				ListCurrenciesFn: func(context.Context) ([]quote.Currency, error) {
					return []quote.Currency{quote.EUR, quote.USD}, nil
				},
			},
			logger: noopLogger,
		}

		w := httptest.NewRecorder()
		s.Currencies(w, httptest.NewRequest(http.MethodGet, "/v1/currencies", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"EUR", "USD"}, decodeListResults(t, w))
	})
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	s, err := New(&mock.Storage{
		QuotesFn: func(context.Context, *types.QuoteQuery) (*types.Page[quote.Quote], error) {
			return &types.Page[quote.Quote]{}, nil
		},
	})
	require.NoError(t, err)

	for _, path := range []string{
		"/health",
		"/v1/quotes",
		"/v1/quotes/EUR",
		"/v1/sources",
		"/v1/currencies",
		"/openapi.yaml",
		"/docs",
	} {
		w := httptest.NewRecorder()
		s.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))

		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestUtils_ParseLimitOffset(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		limit, offset, err := parseLimitOffset("", "")

		require.NoError(t, err)
		assert.Equal(t, defaultLimit, limit)
		assert.Zero(t, offset)
	})

	t.Run("clamped limit", func(t *testing.T) {
		t.Parallel()

		limit, _, err := parseLimitOffset("1000", "")

		require.NoError(t, err)
		assert.Equal(t, maxLimit, limit)
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("-1", "")

		assert.ErrorIs(t, err, errInvalidLimit)
	})

	t.Run("invalid offset", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseLimitOffset("10", "nope")

		assert.ErrorIs(t, err, errInvalidOffset)
	})
}

func withRouteParams(t *testing.T, req *http.Request, params map[string]string) *http.Request {
	t.Helper()

	rctx := chi.NewRouteContext()

	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeListResults(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var resp struct {
		Results []string `json:"results"`
	}

	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	return resp.Results
}
