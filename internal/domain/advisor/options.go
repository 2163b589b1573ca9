package advisor

import (
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/scoring"
)

// Option applies a configuration option to the Advisor.
type Option func(*Advisor)

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(a *Advisor) {
		if e != nil {
			a.engine = e
		}
	}
}

// WithFormation sets the formation used when BuildLineup receives none.
func WithFormation(f model.Formation) Option {
	return func(a *Advisor) {
		if f != nil && f.Validate() == nil {
			a.formation = f
		}
	}
}
