package ptax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/quote"
)

func TestChains(t *testing.T) {
	t.Parallel()

	t.Run("default table", func(t *testing.T) {
		t.Parallel()

		chains, err := Chains(config.DefaultConfig())
		require.NoError(t, err)
		require.Len(t, chains, 2)

		usd := chains[0]
		assert.Equal(t, quote.USD, usd.Currency)
		require.Len(t, usd.Stages, 2)
		require.Len(t, usd.Stages[0], 1)
		require.Len(t, usd.Stages[1], 2)

		assert.IsType(t, &APIStrategy{}, usd.Stages[0][0])
		assert.IsType(t, &DirectHTMLStrategy{}, usd.Stages[1][0])
		assert.IsType(t, &RenderedDOMStrategy{}, usd.Stages[1][1])

		eur := chains[1]
		assert.Equal(t, quote.EUR, eur.Currency)
		require.Len(t, eur.Stages, 2)
		assert.Equal(t, "bcb-home", eur.Stages[1][0].Name())
		assert.Equal(t, "https://www.bcb.gov.br/", eur.Stages[1][0].Origin())
	})

	t.Run("shared strategy instance", func(t *testing.T) {
		t.Parallel()

		chains, err := Chains(config.DefaultConfig())
		require.NoError(t, err)

		assert.Same(t, chains[0].Stages[0][0], chains[1].Stages[0][0])
		assert.Same(t, chains[0].Stages[1][1], chains[1].Stages[1][0])
	})

	t.Run("currency without chain", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Chains = cfg.Chains[:1]

		chains, err := Chains(cfg)
		require.NoError(t, err)
		require.Len(t, chains, 2)

		assert.Equal(t, quote.EUR, chains[1].Currency)
		assert.Empty(t, chains[1].Stages)
	})

	t.Run("unknown strategy kind", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Strategies[0].Kind = "ftp"

		_, err := Chains(cfg)

		assert.ErrorIs(t, err, errUnknownStrategy)
	})

	t.Run("unknown strategy reference", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Chains[1].Stages[0].Strategies = []string{"missing"}

		_, err := Chains(cfg)

		assert.ErrorIs(t, err, errUnknownStrategy)
	})
}
