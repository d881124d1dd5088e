package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/types"
)

func newQuote(t *testing.T, date string, c quote.Currency, buy, sell, source string) quote.Quote {
	t.Helper()

	q, err := quote.New(date, c, buy, sell, source)
	require.NoError(t, err)

	return q
}

func TestStorage_Quotes(t *testing.T) {
	t.Parallel()

	var (
		usdOld = newQuote(t, "13/03/2025", quote.USD, "5.7001", "5.7007", "bcb-api")
		usdNew = newQuote(t, "14/03/2025", quote.USD, "5.7456", "5.7462", "bcb-api")
		usdAlt = newQuote(t, "14/03/2025", quote.USD, "5.7450", "5.7470", "ptax-usd")
		eurNew = newQuote(t, "14/03/2025", quote.EUR, "6.2511", "6.2543", "bcb-api")
	)

	newStorage := func(t *testing.T) *Storage {
		t.Helper()

		s := NewStorage()
		require.NoError(
			t,
			s.WriteQuotes(context.Background(), []quote.Quote{usdOld, usdNew, usdAlt, eurNew}),
		)

		return s
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		page, err := newStorage(t).Quotes(context.Background(), &types.QuoteQuery{})
		require.NoError(t, err)

		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, []quote.Quote{eurNew, usdNew, usdAlt, usdOld}, page.Results)
	})

	t.Run("currency filter", func(t *testing.T) {
		t.Parallel()

		currency := quote.EUR

		page, err := newStorage(t).Quotes(context.Background(), &types.QuoteQuery{
			Currency: &currency,
		})
		require.NoError(t, err)

		assert.Equal(t, []quote.Quote{eurNew}, page.Results)
	})

	t.Run("source filter", func(t *testing.T) {
		t.Parallel()

		source := "ptax-usd"

		page, err := newStorage(t).Quotes(context.Background(), &types.QuoteQuery{
			Source: &source,
		})
		require.NoError(t, err)

		assert.Equal(t, []quote.Quote{usdAlt}, page.Results)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		page, err := newStorage(t).Quotes(context.Background(), &types.QuoteQuery{
			Offset: 1,
			Limit:  2,
		})
		require.NoError(t, err)

		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, []quote.Quote{usdNew, usdAlt}, page.Results)
	})

	t.Run("offset out of range", func(t *testing.T) {
		t.Parallel()

		page, err := newStorage(t).Quotes(context.Background(), &types.QuoteQuery{
			Offset: 10,
		})
		require.NoError(t, err)

		assert.EqualValues(t, 4, page.Total)
		assert.Empty(t, page.Results)
	})

	t.Run("empty storage", func(t *testing.T) {
		t.Parallel()

		page, err := NewStorage().Quotes(context.Background(), &types.QuoteQuery{})
		require.NoError(t, err)

		assert.Zero(t, page.Total)
		assert.Empty(t, page.Results)
	})

	t.Run("identical quotes are stored once", func(t *testing.T) {
		t.Parallel()

		s := newStorage(t)
		require.NoError(t, s.WriteQuotes(context.Background(), []quote.Quote{usdNew}))

		page, err := s.Quotes(context.Background(), &types.QuoteQuery{})
		require.NoError(t, err)

		assert.EqualValues(t, 4, page.Total)
	})
}

func TestStorage_Listings(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	require.NoError(
		t,
		s.WriteQuotes(context.Background(), []quote.Quote{
			newQuote(t, "14/03/2025", quote.USD, "5.7456", "5.7462", "ptax-usd"),
			newQuote(t, "14/03/2025", quote.EUR, "6.2511", "6.2543", "bcb-api"),
			newQuote(t, "14/03/2025", quote.USD, "5.4000", "5.4006", "default"),
		}),
	)

	sources, err := s.ListSources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bcb-api", "default", "ptax-usd"}, sources)

	currencies, err := s.ListCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []quote.Currency{quote.EUR, quote.USD}, currencies)
}
