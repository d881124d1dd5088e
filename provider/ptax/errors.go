package ptax

import "errors"

// Extraction failures. None of them are fatal to a run,
// the orchestrator falls back to the next stage
var (
	ErrNetwork         = errors.New("network error")
	ErrParse           = errors.New("parse error")
	ErrNoTableFound    = errors.New("no table found")
	ErrMalformedRow    = errors.New("malformed row")
	ErrElementNotFound = errors.New("element not found")
	ErrTimeout         = errors.New("timeout")
)
