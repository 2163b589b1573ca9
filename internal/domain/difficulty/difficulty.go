// Package difficulty maps opponent teams to a defensive-strength scalar.
package difficulty

import "maps"

// DefaultStrength is used for unknown or missing opponents.
const DefaultStrength = 10.0

// DefaultStrengths is the built-in opponent mapping.
func DefaultStrengths() map[int]float64 {
	return map[int]float64{1: 15, 2: 10}
}

// Option applies a configuration option to a Model.
type Option func(*Model)

// WithStrengths replaces the team mapping. The map is copied.
func WithStrengths(m map[int]float64) Option {
	return func(d *Model) {
		d.strengths = maps.Clone(m)
		if d.strengths == nil {
			d.strengths = map[int]float64{}
		}
	}
}

// WithFallback sets the strength returned for unmapped teams.
func WithFallback(v float64) Option {
	return func(d *Model) {
		if v >= 0 {
			d.fallback = v
		}
	}
}

// Model resolves defensive strengths. It is immutable after construction.
type Model struct {
	strengths map[int]float64
	fallback  float64
}

// New creates a Model with the default mapping unless overridden.
func New(opts ...Option) *Model {
	d := &Model{
		strengths: DefaultStrengths(),
		fallback:  DefaultStrength,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Strength returns the strength of team, or the fallback when team is nil or unmapped.
func (d *Model) Strength(team *int) float64 {
	if team == nil {
		return d.Fallback()
	}
	return d.StrengthOf(*team)
}

// StrengthOf returns the strength of team id.
func (d *Model) StrengthOf(id int) float64 {
	if d == nil {
		return DefaultStrength
	}
	if v, ok := d.strengths[id]; ok {
		return v
	}
	return d.fallback
}

// Fallback returns the strength used for unknown opponents.
func (d *Model) Fallback() float64 {
	if d == nil {
		return DefaultStrength
	}
	return d.fallback
}

// Strengths returns a copy of the mapping.
func (d *Model) Strengths() map[int]float64 {
	if d == nil {
		return DefaultStrengths()
	}
	return maps.Clone(d.strengths)
}
