// Package types contains request and status types shared by the service and its transports.
package types

import (
	"strings"
	"time"
)

// TeamRatingRequest is the body of a team rating request.
type TeamRatingRequest struct {
	Team []string `json:"team"`
}

// SnapshotInfo describes the snapshot currently served.
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	Players     int       `json:"players"`
	Fixtures    int       `json:"fixtures"`
	Predictions int       `json:"predictions"`
	Teams       int       `json:"teams"`
}

// Stats reports service state for monitoring.
type Stats struct {
	Started     bool          `json:"started"`
	Ready       bool          `json:"ready"`
	Source      string        `json:"source"`
	Schedule    string        `json:"schedule,omitempty"`
	NextRefresh *time.Time    `json:"next_refresh,omitempty"`
	Formation   string        `json:"formation"`
	Uptime      string        `json:"uptime,omitempty"`
	Snapshot    *SnapshotInfo `json:"snapshot,omitempty"`
}

// Normalize trims names and drops blanks, keeping request order.
func (r TeamRatingRequest) Normalize() []string {
	out := make([]string, 0, len(r.Team))
	for _, n := range r.Team {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
