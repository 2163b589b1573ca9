package fpl

import "encoding/json"

// Bootstrap is the subset of bootstrap-static the service reads.
type Bootstrap struct {
	Elements []Element `json:"elements"`
	Teams    []Team    `json:"teams"`
	Events   []Event   `json:"events"`
}

// Element is one player.
type Element struct {
	ID                       int         `json:"id"`
	WebName                  string      `json:"web_name"`
	FirstName                string      `json:"first_name"`
	SecondName               string      `json:"second_name"`
	Team                     int         `json:"team"`
	ElementType              int         `json:"element_type"`
	Minutes                  float64     `json:"minutes"`
	TotalPoints              float64     `json:"total_points"`
	Status                   string      `json:"status"`
	ChanceOfPlayingNextRound *float64    `json:"chance_of_playing_next_round"`
	Form                     json.Number `json:"form"`
	EPNext                   json.Number `json:"ep_next"`
	NowCost                  float64     `json:"now_cost"`
}

// Team is one Premier League club.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  int    `json:"strength"`
}

// Event is one gameweek.
type Event struct {
	ID        int  `json:"id"`
	Finished  bool `json:"finished"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
}

// Fixture is one match.
type Fixture struct {
	ID              int      `json:"id"`
	Event           *int     `json:"event"`
	TeamH           int      `json:"team_h"`
	TeamA           int      `json:"team_a"`
	Finished        bool     `json:"finished"`
	TeamHDifficulty *float64 `json:"team_h_difficulty"`
	TeamADifficulty *float64 `json:"team_a_difficulty"`
}
