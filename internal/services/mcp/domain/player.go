package domain

import (
	"context"

	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/player"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PlayerSummary is a player as listed by the tools.
type PlayerSummary struct {
	ID    string `json:"id" jsonschema:"player identifier"`
	Name  string `json:"name" jsonschema:"player name"`
	XP    int    `json:"xp" jsonschema:"session XP"`
	Notes string `json:"notes,omitempty" jsonschema:"free-form notes"`
}

func playerSummary(p player.Player) PlayerSummary {
	return PlayerSummary{ID: p.ID, Name: p.Name, XP: p.XP, Notes: p.Notes}
}

// PlayerAddInput represents the MCP tool input for adding a player.
type PlayerAddInput struct {
	Name string `json:"name" jsonschema:"player name"`
}

// PlayerAddResult represents the MCP tool output for adding a player.
type PlayerAddResult struct {
	Player  PlayerSummary `json:"player" jsonschema:"the new player"`
	Message string        `json:"message" jsonschema:"localized acknowledgment"`
}

// PlayerAddTool defines the MCP tool schema for adding a player.
func PlayerAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_add",
		Description: "Adds a player with 0 session XP and the default skill counters.",
	}
}

// PlayerAddHandler adds a player to the roster.
func PlayerAddHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PlayerAddInput, PlayerAddResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PlayerAddInput) (*mcp.CallToolResult, PlayerAddResult, error) {
		playerID, err := s.AddPlayer(input.Name)
		if err != nil {
			return nil, PlayerAddResult{}, toolError(printer, err)
		}
		p, err := s.Player(playerID)
		if err != nil {
			return nil, PlayerAddResult{}, toolError(printer, err)
		}
		return nil, PlayerAddResult{
			Player:  playerSummary(p),
			Message: printer.Sprintf(notice.KeyPlayerAdded, p.Name),
		}, nil
	}
}

// PlayerListInput is empty.
type PlayerListInput struct{}

// PlayerListResult lists the roster in order.
type PlayerListResult struct {
	Players []PlayerSummary `json:"players" jsonschema:"players in roster order"`
}

// PlayerListTool defines the MCP tool schema for listing players.
func PlayerListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_list",
		Description: "Lists players in roster order with their session XP.",
	}
}

// PlayerListHandler lists the roster.
func PlayerListHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PlayerListInput, PlayerListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ PlayerListInput) (*mcp.CallToolResult, PlayerListResult, error) {
		players, err := s.Players()
		if err != nil {
			return nil, PlayerListResult{}, toolError(printer, err)
		}
		result := PlayerListResult{Players: make([]PlayerSummary, 0, len(players))}
		for _, p := range players {
			result.Players = append(result.Players, playerSummary(p))
		}
		return nil, result, nil
	}
}

// PlayerRemoveInput represents the MCP tool input for removing a player.
type PlayerRemoveInput struct {
	PlayerID string `json:"player_id" jsonschema:"player identifier"`
}

// PlayerRemoveResult echoes the removed id.
type PlayerRemoveResult struct {
	ID string `json:"id" jsonschema:"removed player identifier"`
}

// PlayerRemoveTool defines the MCP tool schema for removing a player.
func PlayerRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "player_remove",
		Description: "Removes a player and their XP history from the roster.",
	}
}

// PlayerRemoveHandler removes a player.
func PlayerRemoveHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PlayerRemoveInput, PlayerRemoveResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PlayerRemoveInput) (*mcp.CallToolResult, PlayerRemoveResult, error) {
		if err := s.DeletePlayer(input.PlayerID); err != nil {
			return nil, PlayerRemoveResult{}, toolError(printer, err)
		}
		return nil, PlayerRemoveResult{ID: input.PlayerID}, nil
	}
}

// XPGrantInput represents the MCP tool input for granting or revoking XP.
type XPGrantInput struct {
	PlayerID string `json:"player_id" jsonschema:"player identifier"`
	Amount   int    `json:"amount" jsonschema:"XP amount, zero or more"`
}

// XPGrantResult reports the player's total after the change.
type XPGrantResult struct {
	PlayerID string `json:"player_id" jsonschema:"player identifier"`
	XP       int    `json:"xp" jsonschema:"session XP after the change"`
	Message  string `json:"message,omitempty" jsonschema:"localized acknowledgment"`
}

// XPGrantTool defines the MCP tool schema for granting XP.
func XPGrantTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "xp_grant",
		Description: "Adds XP to one player's session total.",
	}
}

// XPGrantHandler grants XP to one player.
func XPGrantHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[XPGrantInput, XPGrantResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input XPGrantInput) (*mcp.CallToolResult, XPGrantResult, error) {
		if err := s.GrantXP(input.PlayerID, input.Amount); err != nil {
			return nil, XPGrantResult{}, toolError(printer, err)
		}
		p, err := s.Player(input.PlayerID)
		if err != nil {
			return nil, XPGrantResult{}, toolError(printer, err)
		}
		return nil, XPGrantResult{
			PlayerID: p.ID,
			XP:       p.XP,
			Message:  printer.Sprintf(notice.KeyXPGranted, p.Name, input.Amount),
		}, nil
	}
}

// XPRevokeTool defines the MCP tool schema for revoking XP.
func XPRevokeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "xp_revoke",
		Description: "Removes XP from one player's session total. The total cannot drop below 0.",
	}
}

// XPRevokeHandler revokes XP from one player.
func XPRevokeHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[XPGrantInput, XPGrantResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input XPGrantInput) (*mcp.CallToolResult, XPGrantResult, error) {
		if err := s.RevokeXP(input.PlayerID, input.Amount); err != nil {
			return nil, XPGrantResult{}, toolError(printer, err)
		}
		p, err := s.Player(input.PlayerID)
		if err != nil {
			return nil, XPGrantResult{}, toolError(printer, err)
		}
		return nil, XPGrantResult{PlayerID: p.ID, XP: p.XP}, nil
	}
}

// XPGrantAllInput represents the MCP tool input for a broadcast grant.
type XPGrantAllInput struct {
	Amount int `json:"amount" jsonschema:"XP amount for every player, zero or more"`
}

// XPGrantAllResult reports every player's total after the grant.
type XPGrantAllResult struct {
	Players []PlayerSummary `json:"players" jsonschema:"players in roster order"`
	Message string          `json:"message" jsonschema:"localized acknowledgment"`
}

// XPGrantAllTool defines the MCP tool schema for a broadcast grant.
func XPGrantAllTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "xp_grant_all",
		Description: "Adds the same XP amount to every player. Either every player receives it or none does.",
	}
}

// XPGrantAllHandler grants XP to every player.
func XPGrantAllHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[XPGrantAllInput, XPGrantAllResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input XPGrantAllInput) (*mcp.CallToolResult, XPGrantAllResult, error) {
		if err := s.GrantXPToAll(input.Amount); err != nil {
			return nil, XPGrantAllResult{}, toolError(printer, err)
		}
		players, err := s.Players()
		if err != nil {
			return nil, XPGrantAllResult{}, toolError(printer, err)
		}
		result := XPGrantAllResult{
			Players: make([]PlayerSummary, 0, len(players)),
			Message: printer.Sprintf(notice.KeyXPGrantedAll, input.Amount),
		}
		for _, p := range players {
			result.Players = append(result.Players, playerSummary(p))
		}
		return nil, result, nil
	}
}
