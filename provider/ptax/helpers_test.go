package ptax

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/session"
)

// newTestSession opens a session that never launches a browser
func newTestSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Render.Enabled = false
	cfg.HTTP.RetryCount = 0

	s, err := session.Open(context.Background(), cfg, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

// newTestServer serves the given body with the given status
func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)

		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(srv.Close)

	return srv
}
