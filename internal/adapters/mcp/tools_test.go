package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/okian/fplcoach/internal/adapters/mcp"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeDeps struct {
	err       error
	lastForm  model.Formation
	lastNames []string
}

func (f *fakeDeps) Formation() model.Formation { return model.DefaultFormation() }

func (f *fakeDeps) Captain(context.Context) (model.ScoredRow, error) {
	if f.err != nil {
		return model.ScoredRow{}, f.err
	}
	r := model.ScoredRow{CaptainScore: 8.5}
	r.Name = "Salah"
	return r, nil
}

func (f *fakeDeps) Transfers(context.Context) ([]model.ScoredRow, error) {
	return []model.ScoredRow{{AdjustedScore: 9}, {AdjustedScore: 7}}, f.err
}

func (f *fakeDeps) Lineup(_ context.Context, formation model.Formation) ([]model.LineupEntry, error) {
	f.lastForm = formation
	return []model.LineupEntry{{Captain: true}}, f.err
}

func (f *fakeDeps) RateTeam(_ context.Context, names []string) (model.Rating, error) {
	f.lastNames = names
	return model.Rating{Rating: 12, Players: names, Weaknesses: []string{}}, f.err
}

func (f *fakeDeps) Player(_ context.Context, name string) (model.ScoredRow, error) {
	return model.ScoredRow{}, &model.NoMatchError{Names: []string{name}}
}

func text(res *mcpsdk.CallToolResult) string {
	So(res.Content, ShouldHaveLength, 1)
	tc, ok := res.Content[0].(*mcpsdk.TextContent)
	So(ok, ShouldBeTrue)
	return tc.Text
}

func TestTools(t *testing.T) {
	ctx := context.Background()

	Convey("Given tools over working dependencies", t, func() {
		deps := &fakeDeps{}
		tools := mcp.NewTools(deps)

		Convey("Then captain returns the pick as JSON", func() {
			res, _, err := tools.Captain(ctx, nil, mcp.NoArgs{})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			var row map[string]any
			So(json.Unmarshal([]byte(text(res)), &row), ShouldBeNil)
			So(row["name"], ShouldEqual, "Salah")
			So(row["captain_score"], ShouldEqual, 8.5)
		})

		Convey("Then transfers return a list", func() {
			res, _, err := tools.Transfers(ctx, nil, mcp.NoArgs{})
			So(err, ShouldBeNil)
			var rows []map[string]any
			So(json.Unmarshal([]byte(text(res)), &rows), ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
		})

		Convey("Then lineup parses the formation argument", func() {
			_, _, err := tools.Lineup(ctx, nil, mcp.LineupArgs{Formation: "5-3-2"})
			So(err, ShouldBeNil)
			So(deps.lastForm[model.DEF], ShouldEqual, 5)

			_, _, err = tools.Lineup(ctx, nil, mcp.LineupArgs{})
			So(err, ShouldBeNil)
			So(deps.lastForm.String(), ShouldEqual, "3-4-3")
		})

		Convey("Then a bad formation is a tool error, not a protocol error", func() {
			res, _, err := tools.Lineup(ctx, nil, mcp.LineupArgs{Formation: "five"})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, "invalid formation")
		})

		Convey("Then team rating trims names and rejects empty squads", func() {
			res, _, err := tools.TeamRating(ctx, nil, mcp.TeamRatingArgs{Team: []string{" Salah ", ""}})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(deps.lastNames, ShouldResemble, []string{"Salah"})

			res, _, err = tools.TeamRating(ctx, nil, mcp.TeamRatingArgs{})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
		})

		Convey("Then unknown players are reported", func() {
			res, _, err := tools.Player(ctx, nil, mcp.PlayerArgs{Name: "Nobody"})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeTrue)
			So(text(res), ShouldContainSubstring, "Nobody")
		})
	})

	Convey("Given dependencies that fail", t, func() {
		tools := mcp.NewTools(&fakeDeps{err: errors.New("no snapshot loaded")})
		res, _, err := tools.Captain(ctx, nil, mcp.NoArgs{})
		So(err, ShouldBeNil)
		So(res.IsError, ShouldBeTrue)
		So(text(res), ShouldContainSubstring, "no snapshot loaded")
	})
}

func TestServer_InMemory(t *testing.T) {
	Convey("Given a client connected to the tool server", t, func() {
		ctx := context.Background()
		server := mcp.NewServer(&fakeDeps{}, "test")
		clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

		ss, err := server.Connect(ctx, serverTransport, nil)
		So(err, ShouldBeNil)
		defer func() { _ = ss.Close() }()

		client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "v0"}, nil)
		cs, err := client.Connect(ctx, clientTransport, nil)
		So(err, ShouldBeNil)
		defer func() { _ = cs.Close() }()

		Convey("Then every tool is listed", func() {
			list, err := cs.ListTools(ctx, nil)
			So(err, ShouldBeNil)
			names := make([]string, 0, len(list.Tools))
			for _, tool := range list.Tools {
				names = append(names, tool.Name)
			}
			So(names, ShouldContain, mcp.ToolCaptain)
			So(names, ShouldContain, mcp.ToolTransfers)
			So(names, ShouldContain, mcp.ToolLineup)
			So(names, ShouldContain, mcp.ToolTeamRating)
		})

		Convey("Then a tool can be called by name", func() {
			res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
				Name:      mcp.ToolTeamRating,
				Arguments: map[string]any{"team": []string{"Salah"}},
			})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			So(text(res), ShouldContainSubstring, `"rating":12`)
		})
	})
}
