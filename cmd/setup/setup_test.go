package setup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/quote"
)

func TestSetup_Config(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Config("", Overrides{})
		require.NoError(t, err)

		assert.Equal(t, config.DefaultOutputPath, cfg.OutputPath)
		assert.True(t, cfg.Render.Enabled)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		cfg, err := Config("", Overrides{
			OutputPath: "out.csv",
			NoRender:   true,
		})
		require.NoError(t, err)

		assert.Equal(t, "out.csv", cfg.OutputPath)
		assert.False(t, cfg.Render.Enabled)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Config(filepath.Join(t.TempDir(), "missing.toml"), Overrides{})

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ptax.toml")
		require.NoError(t, os.WriteFile(path, []byte("[http]\ntimeout = \"soon\"\n"), 0o600))

		_, err := Config(path, Overrides{})

		assert.ErrorIs(t, err, config.ErrInvalidDuration)
	})
}

func TestSetup_Logger(t *testing.T) {
	t.Parallel()

	t.Run("valid level", func(t *testing.T) {
		t.Parallel()

		logger, err := Logger("debug")
		require.NoError(t, err)

		assert.True(t, logger.Enabled(context.Background(), -4))
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()

		_, err := Logger("chatty")

		assert.Error(t, err)
	})
}

func TestSetup_Pipeline(t *testing.T) {
	t.Parallel()

	t.Run("total failure yields the default quotes", func(t *testing.T) {
		t.Parallel()

		cfg, err := Config("", Overrides{NoRender: true})
		require.NoError(t, err)

		// Point every strategy at an unroutable origin
		for i := range cfg.Strategies {
			cfg.Strategies[i].URL = "http://127.0.0.1:1/"
		}

		cfg.HTTP.RetryCount = 0
		cfg.HTTP.Timeout = "1s"

		logger, err := Logger("error")
		require.NoError(t, err)

		p, err := Pipeline(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, 24*time.Hour, p.Interval())

		quotes, err := p.Fetch(context.Background())
		require.NoError(t, err)

		require.Len(t, quotes, 2)

		assert.Equal(t, quote.USD, quotes[0].Currency())
		assert.Equal(t, "5.4000", quotes[0].BuyRate())
		assert.Equal(t, config.DefaultSource, quotes[0].Source())

		assert.Equal(t, quote.EUR, quotes[1].Currency())
		assert.Equal(t, "6.2032", quotes[1].SellRate())
	})

	t.Run("indicator endpoint requested once per run", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)

			_, _ = w.Write([]byte(`{"conteudo": [
				{"moeda": "Dólar", "tipoCotacao": "Fechamento", "dataIndicador": "2024-05-10T13:05:00Z", "valorCompra": 5.05, "valorVenda": 5.06},
				{"moeda": "Euro", "tipoCotacao": "Fechamento", "dataIndicador": "2024-05-10T13:05:00Z", "valorCompra": 5.4412, "valorVenda": 5.4438}
			]}`))
		}))
		t.Cleanup(srv.Close)

		cfg, err := Config("", Overrides{NoRender: true})
		require.NoError(t, err)

		for i := range cfg.Strategies {
			cfg.Strategies[i].URL = "http://127.0.0.1:1/"

			if cfg.Strategies[i].Kind == config.KindAPI {
				cfg.Strategies[i].URL = srv.URL
			}
		}

		cfg.HTTP.RetryCount = 0

		logger, err := Logger("error")
		require.NoError(t, err)

		p, err := Pipeline(cfg, logger)
		require.NoError(t, err)

		quotes, err := p.Fetch(context.Background())
		require.NoError(t, err)

		require.Len(t, quotes, 2)

		assert.Equal(t, quote.USD, quotes[0].Currency())
		assert.Equal(t, "5.05", quotes[0].BuyRate())
		assert.Equal(t, srv.URL, quotes[0].Source())

		assert.Equal(t, quote.EUR, quotes[1].Currency())
		assert.Equal(t, "5.4438", quotes[1].SellRate())
		assert.Equal(t, srv.URL, quotes[1].Source())

		assert.EqualValues(t, 1, hits.Load())
	})

	t.Run("invalid default", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Defaults[0].Currency = "VES"

		logger, err := Logger("error")
		require.NoError(t, err)

		_, err = Pipeline(cfg, logger)

		assert.ErrorIs(t, err, config.ErrMissingDefault)
	})
}
