package session

import (
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/sig-0/ptax/config"
)

const (
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// newHTTPClient creates the session HTTP client, identifying as a desktop browser
func newHTTPClient(cfg config.HTTP, logger *slog.Logger) *resty.Client {
	client := resty.New().
		SetTimeout(cfg.TimeoutDuration()).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(func(r *resty.Response, err error) {
			retryHook(logger, r, err)
		})

	headers := map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Accept":          cfg.Accept,
		"Accept-Language": cfg.AcceptLanguage,
	}

	for k, v := range headers {
		if v != "" {
			client.SetHeader(k, v)
		}
	}

	return client
}

// retryCondition retries transport failures, throttling and server errors
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	switch code := r.StatusCode(); {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

func retryHook(logger *slog.Logger, r *resty.Response, err error) {
	if err != nil {
		logger.Debug(
			"retrying request due to error",
			"url", r.Request.URL,
			"attempt", r.Request.Attempt,
			"err", err,
		)

		return
	}

	logger.Debug(
		"retrying request due to status code",
		"url", r.Request.URL,
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode(),
	)
}
