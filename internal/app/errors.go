package service

import "errors"

var (
	// ErrNoSource indicates the service was started without a snapshot source.
	ErrNoSource = errors.New("no snapshot source configured")
	// ErrUnknownSource indicates the configured source name is not supported.
	ErrUnknownSource = errors.New("unknown snapshot source")
)
