package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for domain errors. Callers match them with errors.Is.
var (
	ErrSchema   = errors.New("schema error")
	ErrEmptySet = errors.New("no valid candidate")
	ErrNoMatch  = errors.New("no matching players")
)

// SchemaError reports a required column missing from an input table.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q: missing required column %q", e.Table, e.Column)
}

// Unwrap exposes ErrSchema.
func (e *SchemaError) Unwrap() error { return ErrSchema }

// NoMatchError reports a named lookup that matched no player.
type NoMatchError struct {
	Names []string
}

func (e *NoMatchError) Error() string {
	if len(e.Names) == 0 {
		return ErrNoMatch.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNoMatch, strings.Join(e.Names, ", "))
}

// Unwrap exposes ErrNoMatch.
func (e *NoMatchError) Unwrap() error { return ErrNoMatch }
