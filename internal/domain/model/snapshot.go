package model

import "time"

// Snapshot is an immutable set of input tables captured at one point in time.
// Players is mandatory; Fixtures and Predictions may be nil.
type Snapshot struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	Players     *Table    `json:"players"`
	Fixtures    *Table    `json:"fixtures,omitempty"`
	Predictions *Table    `json:"predictions,omitempty"`
	Teams       []TeamRef `json:"teams,omitempty"`
}

// TeamName returns the display name for id, or "" when unknown.
func (s *Snapshot) TeamName(id int) string {
	if s == nil {
		return ""
	}
	for _, t := range s.Teams {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}
