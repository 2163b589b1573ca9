package fpl

import "errors"

// Sentinel kinds for upstream failures.
var (
	ErrUpstream    = errors.New("fpl api request failed")
	ErrBreakerOpen = errors.New("fpl api circuit open")
)
