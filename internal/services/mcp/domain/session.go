package domain

import (
	"context"
	"time"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/player"
	"github.com/louisbranch/dmscreen/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session is the subset of the session controller the tools call.
type Session interface {
	State() session.State
	AddPlayer(name string) (string, error)
	DeletePlayer(playerID string) error
	Players() ([]player.Player, error)
	Player(playerID string) (player.Player, error)
	GrantXP(playerID string, amount int) error
	GrantXPToAll(amount int) error
	RevokeXP(playerID string, amount int) error
	RequestReset() error
	ConfirmReset() (session.Event, error)
	CancelReset() error
	CreateAttack(in attack.Input) (string, error)
	DuplicateAttack(attackID string) (string, error)
	MoveAttack(attackID string, target int) error
	DeleteAttack(attackID string) error
	Attacks() ([]attack.Definition, error)
	Attack(attackID string) (attack.Definition, error)
	CreateCharacter(in character.Input) (string, error)
	DeleteCharacter(characterID string) error
	Characters() ([]character.Character, error)
	Character(characterID string) (character.Character, error)
	DamageCharacter(characterID string, amount int) (character.DamageResult, error)
	HealCharacter(characterID string, amount int) (int, error)
	AddTempHP(characterID string, amount int) (int, error)
	StartTurn() (int, error)
	EndTurn() error
	Turn() (int, bool, error)
	AddPassiveDamage(in passive.Input) (string, error)
	PassiveDamages() ([]passive.Damage, error)
	ApplyPassiveDamage(damageID, characterID string, seed *int64) (session.PassiveHit, error)
}

// SessionResetInput is empty; reset tools act on the open session.
type SessionResetInput struct{}

// SessionResetResult reports the session state after a reset step.
type SessionResetResult struct {
	State   string `json:"state" jsonschema:"session state after the call (ready, reset_pending)"`
	Message string `json:"message" jsonschema:"localized acknowledgment"`
	ResetAt string `json:"reset_at,omitempty" jsonschema:"RFC3339 timestamp of a confirmed reset"`
}

// SessionResetRequestTool defines the first step of a session reset.
func SessionResetRequestTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_reset_request",
		Description: "Asks to start a new session. Every player's session XP returns to 0 once session_reset_confirm is called; session_reset_cancel aborts.",
	}
}

// SessionResetRequestHandler moves the session to reset_pending.
func SessionResetRequestHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[SessionResetInput, SessionResetResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ SessionResetInput) (*mcp.CallToolResult, SessionResetResult, error) {
		if err := s.RequestReset(); err != nil {
			return nil, SessionResetResult{}, toolError(printer, err)
		}
		return nil, SessionResetResult{
			State:   s.State().String(),
			Message: printer.Sprintf(notice.KeyResetRequested),
		}, nil
	}
}

// SessionResetConfirmTool defines the confirming step of a session reset.
func SessionResetConfirmTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_reset_confirm",
		Description: "Confirms a pending reset: zeroes every player's session XP and history. Players and attacks are kept.",
	}
}

// SessionResetConfirmHandler confirms a pending reset.
func SessionResetConfirmHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[SessionResetInput, SessionResetResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ SessionResetInput) (*mcp.CallToolResult, SessionResetResult, error) {
		event, err := s.ConfirmReset()
		if err != nil {
			return nil, SessionResetResult{}, toolError(printer, err)
		}
		return nil, SessionResetResult{
			State:   s.State().String(),
			Message: printer.Sprintf(notice.KeyResetSucceeded),
			ResetAt: event.Timestamp.UTC().Format(time.RFC3339),
		}, nil
	}
}

// SessionResetCancelTool defines the aborting step of a session reset.
func SessionResetCancelTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_reset_cancel",
		Description: "Cancels a pending reset without changing any XP.",
	}
}

// SessionResetCancelHandler cancels a pending reset.
func SessionResetCancelHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[SessionResetInput, SessionResetResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ SessionResetInput) (*mcp.CallToolResult, SessionResetResult, error) {
		if err := s.CancelReset(); err != nil {
			return nil, SessionResetResult{}, toolError(printer, err)
		}
		return nil, SessionResetResult{
			State:   s.State().String(),
			Message: printer.Sprintf(notice.KeyResetCancelled),
		}, nil
	}
}
