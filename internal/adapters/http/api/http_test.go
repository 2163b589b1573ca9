package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/fplcoach/internal/adapters/http/api"
	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/types"
	"github.com/okian/fplcoach/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies returns canned results; err, when set, is returned by every operation.
type mockDependencies struct {
	ready      bool
	err        error
	rows       []model.ScoredRow
	lastFilter advisor.Filter
	lastNames  []string
	lastForm   model.Formation
}

func (m *mockDependencies) Ready() bool                { return m.ready }
func (m *mockDependencies) Formation() model.Formation { return model.DefaultFormation() }
func (m *mockDependencies) GetStats() types.Stats {
	return types.Stats{Started: true, Ready: m.ready, Source: "mock"}
}

func (m *mockDependencies) Captain(context.Context) (model.ScoredRow, error) {
	if m.err != nil {
		return model.ScoredRow{}, m.err
	}
	return m.rows[0], nil
}

func (m *mockDependencies) Transfers(context.Context) ([]model.ScoredRow, error) {
	return m.rows, m.err
}

func (m *mockDependencies) Lineup(_ context.Context, f model.Formation) ([]model.LineupEntry, error) {
	m.lastForm = f
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.LineupEntry, 0, len(m.rows))
	for i, r := range m.rows {
		out = append(out, model.LineupEntry{ScoredRow: r, Captain: i == 0, ViceCaptain: i == 1})
	}
	return out, nil
}

func (m *mockDependencies) RateTeam(_ context.Context, names []string) (model.Rating, error) {
	m.lastNames = names
	if m.err != nil {
		return model.Rating{}, m.err
	}
	return model.Rating{Rating: 42, Players: names, Weaknesses: []string{}}, nil
}

func (m *mockDependencies) Players(_ context.Context, f advisor.Filter) ([]model.ScoredRow, error) {
	m.lastFilter = f
	return m.rows, m.err
}

func (m *mockDependencies) Player(_ context.Context, name string) (model.ScoredRow, error) {
	if m.err != nil {
		return model.ScoredRow{}, m.err
	}
	for _, r := range m.rows {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return model.ScoredRow{}, &model.NoMatchError{Names: []string{name}}
}

func (m *mockDependencies) Compare(_ context.Context, a, b string) (advisor.Comparison, error) {
	if m.err != nil {
		return advisor.Comparison{}, m.err
	}
	return advisor.Comparison{Player1: m.rows[0], Player2: m.rows[1]}, nil
}

func (m *mockDependencies) Injuries(context.Context) ([]model.PlayerRecord, error) {
	return nil, m.err
}

func (m *mockDependencies) DebugCaptain(_ context.Context, name string) (advisor.CaptainTrace, error) {
	return advisor.CaptainTrace{Name: name}, m.err
}

func row(name string, captain float64) model.ScoredRow {
	opp := 1
	pred := captain + 1
	return model.ScoredRow{
		EnrichedRow: model.EnrichedRow{
			PlayerRecord:    model.PlayerRecord{Name: name, PredictedPoints: &pred},
			OpponentTeamID:  &opp,
			OpponentName:    "Arsenal",
			DefenseStrength: 10,
		},
		CaptainScore: captain,
	}
}

func newDeps() *mockDependencies {
	return &mockDependencies{ready: true, rows: []model.ScoredRow{row("Salah", 9), row("Haaland", 8)}}
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server over a loaded snapshot", t, func() {
		deps := newDeps()
		h := api.NewServer(deps).Handler()

		Convey("Then health reports ready", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ready":true`)
		})

		Convey("Then metrics are exposed", func() {
			w := serve(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are returned as JSON", func() {
			w := serve(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats types.Stats
			decode(w, &stats)
			So(stats.Source, ShouldEqual, "mock")
		})

		Convey("Then the captain response names the pick and its opponent", func() {
			w := serve(h, http.MethodGet, "/captain", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			decode(w, &body)
			So(body["captain"], ShouldEqual, "Salah")
			So(body["predicted_points"], ShouldEqual, 10.0)
			So(body["next_opponent"], ShouldEqual, 1.0)
			So(body["next_opponent_name"], ShouldEqual, "Arsenal")
			So(body["opponent_defensive_strength"], ShouldEqual, 10.0)
		})

		Convey("Then transfers are a JSON array", func() {
			w := serve(h, http.MethodGet, "/transfers", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var rows []map[string]any
			decode(w, &rows)
			So(rows, ShouldHaveLength, 2)
			So(rows[0]["name"], ShouldEqual, "Salah")
		})

		Convey("Then the team builder honours the formation query", func() {
			w := serve(h, http.MethodGet, "/team_builder?formation=4-4-2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastForm[model.DEF], ShouldEqual, 4)
			So(deps.lastForm[model.FWD], ShouldEqual, 2)
			var body map[string]any
			decode(w, &body)
			So(body["formation"], ShouldEqual, "4-4-2")
			So(body["size"], ShouldEqual, 2.0)
		})

		Convey("Then the team builder falls back to the default formation", func() {
			w := serve(h, http.MethodGet, "/team_builder", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastForm.String(), ShouldEqual, "3-4-3")
		})

		Convey("Then a malformed formation is rejected", func() {
			w := serve(h, http.MethodGet, "/team_builder?formation=4-x", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then a team is rated from trimmed names", func() {
			w := serve(h, http.MethodPost, "/team_rating", `{"team": [" Salah ", "", "Haaland"]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastNames, ShouldResemble, []string{"Salah", "Haaland"})
			var body map[string]any
			decode(w, &body)
			So(body["rating"], ShouldEqual, 42.0)
			So(body, ShouldContainKey, "weaknesses")
		})

		Convey("Then bad rating bodies are rejected", func() {
			So(serve(h, http.MethodPost, "/team_rating", `not json`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodPost, "/team_rating", `{"team": []}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodPost, "/team_rating", `{"squad": ["Salah"]}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then players can be filtered", func() {
			w := serve(h, http.MethodGet, "/players?position=mid&team_id=12&name=sal&limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastFilter, ShouldResemble, advisor.Filter{Position: model.MID, TeamID: 12, Name: "sal", Limit: 5})
		})

		Convey("Then invalid player filters are rejected", func() {
			So(serve(h, http.MethodGet, "/players?position=keeper", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodGet, "/players?team_id=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodGet, "/players?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodGet, "/players?limit=100000", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then a single player is looked up by name", func() {
			found := serve(h, http.MethodGet, "/players/haaland", "")
			So(found.Code, ShouldEqual, http.StatusOK)
			var player map[string]any
			decode(found, &player)
			So(player["next_opponent_name"], ShouldEqual, "Arsenal")
			w := serve(h, http.MethodGet, "/players/Nobody", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "no_match")
		})

		Convey("Then compare requires both names", func() {
			So(serve(h, http.MethodGet, "/compare?player1=Salah", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodGet, "/compare?player1=Salah&player2=Haaland", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then injuries are wrapped and never null", func() {
			w := serve(h, http.MethodGet, "/injuries", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"injuries":[]`)
		})

		Convey("Then the captain debug view requires a name", func() {
			So(serve(h, http.MethodGet, "/debug/captain", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(h, http.MethodGet, "/debug/captain?name=Salah", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then every response carries a request id", func() {
			w := serve(h, http.MethodGet, "/captain", "")
			So(w.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
		})

		Convey("Then unknown routes are not found", func() {
			So(serve(h, http.MethodGet, "/no/such/route", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not ready", repository.ErrNotReady, http.StatusServiceUnavailable, "not_ready"},
		{"schema", &model.SchemaError{Table: "players", Column: "team_id"}, http.StatusInternalServerError, "schema_error"},
		{"empty set", model.ErrEmptySet, http.StatusNotFound, "no_candidate"},
		{"no match", &model.NoMatchError{Names: []string{"x"}}, http.StatusNotFound, "no_match"},
		{"formation", &model.FormationError{Position: model.DEF, Count: -1}, http.StatusBadRequest, "bad_request"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	Convey("Given operations that fail", t, func() {
		for _, tc := range cases {
			deps := newDeps()
			deps.err = tc.err
			h := api.NewServer(deps).Handler()

			Convey("When the failure is "+tc.name, func() {
				w := serve(h, http.MethodGet, "/captain", "")
				So(w.Code, ShouldEqual, tc.status)
				var body map[string]string
				decode(w, &body)
				So(body["code"], ShouldEqual, tc.code)
				So(body["message"], ShouldNotBeEmpty)
			})
		}
	})

	Convey("Given no snapshot loaded", t, func() {
		deps := newDeps()
		deps.ready = false
		h := api.NewServer(deps).Handler()

		Convey("Then health reports loading", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestServer_Mounts(t *testing.T) {
	Convey("Given a server with an extra mount", t, func() {
		extra := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		h := api.NewServer(newDeps(), api.WithMount("/extra", extra), api.WithCORSOrigins("http://localhost:5173")).Handler()

		Convey("Then the mount is reachable", func() {
			So(serve(h, http.MethodGet, "/extra", "").Code, ShouldEqual, http.StatusTeapot)
		})

		Convey("Then CORS preflight from the allowed origin succeeds", func() {
			req := httptest.NewRequest(http.MethodOptions, "/captain", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:5173")
		})
	})
}
