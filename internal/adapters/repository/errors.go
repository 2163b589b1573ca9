package repository

import "errors"

// Sentinel kinds for snapshot loading.
var (
	ErrNotReady      = errors.New("no snapshot loaded")
	ErrMissingTable  = errors.New("required table not found")
	ErrInvalidFormat = errors.New("unsupported table format")
	ErrSourceClosed  = errors.New("source closed")
)
