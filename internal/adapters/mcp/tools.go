// Package mcp exposes the recommendation operations as Model Context Protocol
// tools over streamable HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
)

// Tool names.
const (
	ToolCaptain    = "captain"
	ToolTransfers  = "transfers"
	ToolLineup     = "lineup"
	ToolTeamRating = "team_rating"
	ToolPlayer     = "player"
)

// Dependencies are the service operations the tools call.
type Dependencies interface {
	Formation() model.Formation
	Captain(ctx context.Context) (model.ScoredRow, error)
	Transfers(ctx context.Context) ([]model.ScoredRow, error)
	Lineup(ctx context.Context, formation model.Formation) ([]model.LineupEntry, error)
	RateTeam(ctx context.Context, names []string) (model.Rating, error)
	Player(ctx context.Context, name string) (model.ScoredRow, error)
}

// NoArgs is the input of tools without parameters.
type NoArgs struct{}

// LineupArgs is the input of the lineup tool.
type LineupArgs struct {
	Formation string `json:"formation,omitempty" jsonschema:"Outfield shape such as 3-4-3 (default from configuration)"`
}

// TeamRatingArgs is the input of the team_rating tool.
type TeamRatingArgs struct {
	Team []string `json:"team" jsonschema:"Player names in the squad (required)"`
}

// PlayerArgs is the input of the player tool.
type PlayerArgs struct {
	Name string `json:"name" jsonschema:"Player name, case-insensitive (required)"`
}

// Tools implements the tool handlers over Dependencies.
type Tools struct {
	deps   Dependencies
	logger logger.Logger
}

// NewTools creates the tool handlers.
func NewTools(deps Dependencies) *Tools {
	return &Tools{deps: deps, logger: logger.Get().Named("mcp")}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(deps Dependencies, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "fplcoach", Version: version}, nil)
	t := NewTools(deps)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolCaptain,
		Description: "Best captain: highest predicted points minus a tenth of the next opponent's defensive strength",
	}, t.Captain)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolTransfers,
		Description: "Top five transfer targets by predicted points adjusted for upcoming fixture difficulty",
	}, t.Transfers)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolLineup,
		Description: "Lineup filled per position by points per game; first entry is captain, second vice-captain",
	}, t.Lineup)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolTeamRating,
		Description: "Rate a squad by name: total points, points per game and fixture difficulty, with weaknesses",
	}, t.TeamRating)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolPlayer,
		Description: "Scored statistics for one player",
	}, t.Player)

	return server
}

// Handler serves server over streamable HTTP with JSON responses.
func Handler(server *mcpsdk.Server) http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return server
	}, &mcpsdk.StreamableHTTPOptions{JSONResponse: true})
}

// Captain handles the captain tool.
func (t *Tools) Captain(ctx context.Context, _ *mcpsdk.CallToolRequest, _ NoArgs) (*mcpsdk.CallToolResult, any, error) {
	c, err := t.deps.Captain(ctx)
	return t.result(ctx, ToolCaptain, c, err)
}

// Transfers handles the transfers tool.
func (t *Tools) Transfers(ctx context.Context, _ *mcpsdk.CallToolRequest, _ NoArgs) (*mcpsdk.CallToolResult, any, error) {
	rows, err := t.deps.Transfers(ctx)
	return t.result(ctx, ToolTransfers, rows, err)
}

// Lineup handles the lineup tool.
func (t *Tools) Lineup(ctx context.Context, _ *mcpsdk.CallToolRequest, args LineupArgs) (*mcpsdk.CallToolResult, any, error) {
	formation := t.deps.Formation()
	if raw := strings.TrimSpace(args.Formation); raw != "" {
		f, err := model.ParseFormation(raw)
		if err != nil {
			return t.result(ctx, ToolLineup, nil, err)
		}
		formation = f
	}
	lineup, err := t.deps.Lineup(ctx, formation)
	return t.result(ctx, ToolLineup, lineup, err)
}

// TeamRating handles the team_rating tool.
func (t *Tools) TeamRating(ctx context.Context, _ *mcpsdk.CallToolRequest, args TeamRatingArgs) (*mcpsdk.CallToolResult, any, error) {
	names := make([]string, 0, len(args.Team))
	for _, n := range args.Team {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return t.result(ctx, ToolTeamRating, nil, fmt.Errorf("team is required"))
	}
	rating, err := t.deps.RateTeam(ctx, names)
	return t.result(ctx, ToolTeamRating, rating, err)
}

// Player handles the player tool.
func (t *Tools) Player(ctx context.Context, _ *mcpsdk.CallToolRequest, args PlayerArgs) (*mcpsdk.CallToolResult, any, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return t.result(ctx, ToolPlayer, nil, fmt.Errorf("name is required"))
	}
	row, err := t.deps.Player(ctx, name)
	return t.result(ctx, ToolPlayer, row, err)
}

// result renders v as JSON text content. Operation errors become tool
// errors so the calling model can read them; they are not protocol errors.
func (t *Tools) result(ctx context.Context, tool string, v any, err error) (*mcpsdk.CallToolResult, any, error) {
	if err == nil {
		var body []byte
		body, err = json.Marshal(v)
		if err == nil {
			metrics.RecordToolCall(tool, metrics.OutcomeOK)
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(body)}},
			}, nil, nil
		}
	}
	metrics.RecordToolCall(tool, metrics.OutcomeError)
	t.logger.Debug(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}, nil, nil
}
