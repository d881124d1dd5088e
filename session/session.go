package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"resty.dev/v3"

	"github.com/sig-0/ptax/config"
)

var (
	ErrNoRenderer    = errors.New("no renderer available")
	ErrRenderTimeout = errors.New("render timed out")
)

// Renderer loads a page with full script execution
// and returns the rendered markup
type Renderer interface {
	// Render renders the page at the given URL
	Render(ctx context.Context, url string) (string, error)

	// Close releases the rendering engine
	Close() error
}

// Session owns the resources shared by the strategies of a single run.
// It is safe to read from multiple strategies, and must be closed
type Session struct {
	http     *resty.Client
	renderer Renderer
	logger   *slog.Logger

	cacheMux sync.Mutex
	cache    map[string]string

	closeOnce sync.Once
	closeErr  error
}

type Option func(s *Session)

// WithLogger specifies the logger for the session
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithRenderer specifies the rendering engine, instead of
// launching a headless browser
func WithRenderer(r Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// Open acquires the session resources. The headless browser is launched
// only when rendering is enabled and no renderer was supplied
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	s.http = newHTTPClient(cfg.HTTP, s.logger)

	if s.renderer == nil && cfg.Render.Enabled {
		browser, err := NewBrowser(ctx, cfg.Render, cfg.HTTP.UserAgent, s.logger)
		if err != nil {
			if closeErr := s.http.Close(); closeErr != nil {
				s.logger.Error("unable to close http client", "err", closeErr)
			}

			return nil, fmt.Errorf("unable to launch renderer: %w", err)
		}

		s.renderer = browser
	}

	return s, nil
}

// HTTP returns the shared HTTP client
func (s *Session) HTTP() *resty.Client {
	return s.http
}

// Renderer returns the rendering engine, if the session has one
func (s *Session) Renderer() (Renderer, error) {
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}

	return s.renderer, nil
}

// Cached returns the value stored under key, calling fetch on first use.
// Only successful fetches are kept, until the session is closed
func (s *Session) Cached(key string, fetch func() (string, error)) (string, error) {
	s.cacheMux.Lock()
	defer s.cacheMux.Unlock()

	if value, ok := s.cache[key]; ok {
		s.logger.Debug("serving cached response", "key", key)

		return value, nil
	}

	value, err := fetch()
	if err != nil {
		return "", err
	}

	if s.cache == nil {
		s.cache = make(map[string]string)
	}

	s.cache[key] = value

	return value, nil
}

// Close releases the renderer and the HTTP client.
// Subsequent calls return the first result
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.renderer != nil {
			if err := s.renderer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("unable to close renderer: %w", err))
			}
		}

		if err := s.http.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close http client: %w", err))
		}

		s.cacheMux.Lock()
		s.cache = nil
		s.cacheMux.Unlock()

		s.closeErr = errors.Join(errs...)

		s.logger.Debug("session closed")
	})

	return s.closeErr
}
