package repository

import (
	"github.com/google/uuid"
)

// Option applies a configuration option to the Holder.
type Option func(*Holder)

// WithPublishers forwards accepted snapshots to each publisher.
func WithPublishers(p ...Publisher) Option {
	return func(h *Holder) {
		for _, pub := range p {
			if pub != nil {
				h.publishers = append(h.publishers, pub)
			}
		}
	}
}

// WithIDGenerator overrides how snapshot ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(h *Holder) {
		if gen != nil {
			h.newID = gen
		}
	}
}

func newUUID() string { return uuid.NewString() }
