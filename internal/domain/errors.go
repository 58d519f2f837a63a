package domain

import "errors"

var (
	// ErrInvalidQuote marks a malformed price or odds value. Invalid quotes
	// are excluded from aggregation, never silently coerced.
	ErrInvalidQuote = errors.New("invalid quote")

	// ErrInsufficientData marks a computation over fewer corroborating
	// sources than required; callers downgrade confidence rather than fail.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateBook marks an empty book or non-positive reference
	// price; fill simulations short-circuit to a zero-liquidity result.
	ErrDegenerateBook = errors.New("degenerate book")

	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
