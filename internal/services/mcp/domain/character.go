package domain

import (
	"context"

	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CharacterSummary is a tracked character as returned by the tools.
type CharacterSummary struct {
	ID           string `json:"id" jsonschema:"character identifier"`
	Name         string `json:"name" jsonschema:"character name"`
	MaxHP        int    `json:"max_hp" jsonschema:"maximum hit points"`
	CurrentHP    int    `json:"current_hp" jsonschema:"current hit points"`
	TempHP       int    `json:"temp_hp" jsonschema:"temporary hit points"`
	Regeneration int    `json:"regeneration" jsonschema:"hit points regained at the start of each turn"`
}

func characterSummary(c character.Character) CharacterSummary {
	return CharacterSummary{
		ID:           c.ID,
		Name:         c.Name,
		MaxHP:        c.MaxHP,
		CurrentHP:    c.CurrentHP,
		TempHP:       c.TempHP,
		Regeneration: c.Regeneration,
	}
}

// CharacterCreateInput represents the MCP tool input for adding a character.
type CharacterCreateInput struct {
	Name         string `json:"name" jsonschema:"character name"`
	MaxHP        int    `json:"max_hp" jsonschema:"maximum hit points, greater than 0"`
	Regeneration int    `json:"regeneration,omitempty" jsonschema:"hit points regained at the start of each turn"`
}

// CharacterResult returns one character with an acknowledgment.
type CharacterResult struct {
	Character CharacterSummary `json:"character" jsonschema:"the character after the call"`
	Message   string           `json:"message,omitempty" jsonschema:"localized acknowledgment"`
}

// CharacterCreateTool defines the MCP tool schema for adding a character.
func CharacterCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_create",
		Description: "Adds a character to the encounter at full hit points.",
	}
}

// CharacterCreateHandler adds a character.
func CharacterCreateHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterCreateInput, CharacterResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterCreateInput) (*mcp.CallToolResult, CharacterResult, error) {
		characterID, err := s.CreateCharacter(character.Input{
			Name:         input.Name,
			MaxHP:        input.MaxHP,
			Regeneration: input.Regeneration,
		})
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		c, err := s.Character(characterID)
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		return nil, CharacterResult{
			Character: characterSummary(c),
			Message:   printer.Sprintf(notice.KeyCharacterAdded, c.Name),
		}, nil
	}
}

// CharacterListInput selects the list order.
type CharacterListInput struct {
	Sort string `json:"sort,omitempty" jsonschema:"order: empty for creation order, hp or name"`
}

// CharacterListResult lists the encounter.
type CharacterListResult struct {
	Characters []CharacterSummary `json:"characters" jsonschema:"characters in the requested order"`
	Turn       int                `json:"turn" jsonschema:"current turn number"`
	TurnActive bool               `json:"turn_active" jsonschema:"whether the turn is in progress"`
}

// CharacterListTool defines the MCP tool schema for listing characters.
func CharacterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_list",
		Description: "Lists the encounter's characters with their hit points and the current turn.",
	}
}

// CharacterListHandler lists characters.
func CharacterListHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterListInput, CharacterListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterListInput) (*mcp.CallToolResult, CharacterListResult, error) {
		characters, err := s.Characters()
		if err != nil {
			return nil, CharacterListResult{}, toolError(printer, err)
		}
		switch input.Sort {
		case "hp":
			character.SortByHP(characters)
		case "name":
			character.SortByName(characters, printer.Locale())
		}
		turn, active, err := s.Turn()
		if err != nil {
			return nil, CharacterListResult{}, toolError(printer, err)
		}
		result := CharacterListResult{
			Characters: make([]CharacterSummary, 0, len(characters)),
			Turn:       turn,
			TurnActive: active,
		}
		for _, c := range characters {
			result.Characters = append(result.Characters, characterSummary(c))
		}
		return nil, result, nil
	}
}

// CharacterRemoveInput represents the MCP tool input for removing a character.
type CharacterRemoveInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
}

// CharacterRemoveResult echoes the removed id.
type CharacterRemoveResult struct {
	ID string `json:"id" jsonschema:"removed character identifier"`
}

// CharacterRemoveTool defines the MCP tool schema for removing a character.
func CharacterRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_remove",
		Description: "Removes a character and its log from the encounter.",
	}
}

// CharacterRemoveHandler removes a character.
func CharacterRemoveHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterRemoveInput, CharacterRemoveResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterRemoveInput) (*mcp.CallToolResult, CharacterRemoveResult, error) {
		if err := s.DeleteCharacter(input.CharacterID); err != nil {
			return nil, CharacterRemoveResult{}, toolError(printer, err)
		}
		return nil, CharacterRemoveResult{ID: input.CharacterID}, nil
	}
}

// CharacterAmountInput carries a hit point amount for one character.
type CharacterAmountInput struct {
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	Amount      int    `json:"amount" jsonschema:"hit points, zero or more"`
}

// CharacterDamageResult reports how a hit was absorbed.
type CharacterDamageResult struct {
	Damage  character.DamageResult `json:"damage" jsonschema:"damage dealt and absorbed"`
	Message string                 `json:"message" jsonschema:"localized acknowledgment"`
}

// CharacterDamageTool defines the MCP tool schema for damaging a character.
func CharacterDamageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_damage",
		Description: "Deals damage to a character. Temporary hit points absorb it first and hit points never drop below 0.",
	}
}

// CharacterDamageHandler damages a character.
func CharacterDamageHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterAmountInput, CharacterDamageResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterAmountInput) (*mcp.CallToolResult, CharacterDamageResult, error) {
		result, err := s.DamageCharacter(input.CharacterID, input.Amount)
		if err != nil {
			return nil, CharacterDamageResult{}, toolError(printer, err)
		}
		c, err := s.Character(input.CharacterID)
		if err != nil {
			return nil, CharacterDamageResult{}, toolError(printer, err)
		}
		return nil, CharacterDamageResult{
			Damage:  result,
			Message: printer.Sprintf(notice.KeyDamaged, c.Name, result.Dealt, result.AbsorbedByTemp, result.RemainingHP, result.RemainingTempHP),
		}, nil
	}
}

// CharacterHealTool defines the MCP tool schema for healing a character.
func CharacterHealTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_heal",
		Description: "Restores hit points to a character without passing its maximum.",
	}
}

// CharacterHealHandler heals a character.
func CharacterHealHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterAmountInput, CharacterResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterAmountInput) (*mcp.CallToolResult, CharacterResult, error) {
		healed, err := s.HealCharacter(input.CharacterID, input.Amount)
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		c, err := s.Character(input.CharacterID)
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		return nil, CharacterResult{
			Character: characterSummary(c),
			Message:   printer.Sprintf(notice.KeyHealed, c.Name, healed),
		}, nil
	}
}

// CharacterTempHPTool defines the MCP tool schema for temporary hit points.
func CharacterTempHPTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_temp_hp",
		Description: "Adds temporary hit points to a character.",
	}
}

// CharacterTempHPHandler adds temporary hit points.
func CharacterTempHPHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[CharacterAmountInput, CharacterResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CharacterAmountInput) (*mcp.CallToolResult, CharacterResult, error) {
		total, err := s.AddTempHP(input.CharacterID, input.Amount)
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		c, err := s.Character(input.CharacterID)
		if err != nil {
			return nil, CharacterResult{}, toolError(printer, err)
		}
		return nil, CharacterResult{
			Character: characterSummary(c),
			Message:   printer.Sprintf(notice.KeyTempHP, c.Name, total),
		}, nil
	}
}

// TurnInput is empty; turn tools act on the open encounter.
type TurnInput struct{}

// TurnResult reports the turn counter after a call.
type TurnResult struct {
	Turn    int    `json:"turn" jsonschema:"current turn number"`
	Active  bool   `json:"active" jsonschema:"whether the turn is in progress"`
	Message string `json:"message" jsonschema:"localized acknowledgment"`
}

// TurnStartTool defines the MCP tool schema for starting a turn.
func TurnStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_start",
		Description: "Advances the turn counter and applies regeneration to every living character.",
	}
}

// TurnStartHandler starts a turn.
func TurnStartHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[TurnInput, TurnResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TurnInput) (*mcp.CallToolResult, TurnResult, error) {
		turn, err := s.StartTurn()
		if err != nil {
			return nil, TurnResult{}, toolError(printer, err)
		}
		return nil, TurnResult{Turn: turn, Active: true, Message: printer.Sprintf(notice.KeyTurnStarted, turn)}, nil
	}
}

// TurnEndTool defines the MCP tool schema for ending a turn.
func TurnEndTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_end",
		Description: "Ends the turn in progress. Fails with TURN_NOT_ACTIVE when no turn was started.",
	}
}

// TurnEndHandler ends the turn in progress.
func TurnEndHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[TurnInput, TurnResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ TurnInput) (*mcp.CallToolResult, TurnResult, error) {
		if err := s.EndTurn(); err != nil {
			return nil, TurnResult{}, toolError(printer, err)
		}
		turn, active, err := s.Turn()
		if err != nil {
			return nil, TurnResult{}, toolError(printer, err)
		}
		return nil, TurnResult{Turn: turn, Active: active, Message: printer.Sprintf(notice.KeyTurnEnded, turn)}, nil
	}
}

// PassiveAddInput represents the MCP tool input for a passive damage.
type PassiveAddInput struct {
	Name        string `json:"name" jsonschema:"passive damage name"`
	Dice        string `json:"dice" jsonschema:"dice expression such as 1d6+2"`
	Type        string `json:"type,omitempty" jsonschema:"damage type id"`
	Description string `json:"description,omitempty" jsonschema:"free-form description"`
}

// PassiveAddResult returns the new passive damage.
type PassiveAddResult struct {
	Damage passive.Damage `json:"damage" jsonschema:"the stored passive damage"`
}

// PassiveAddTool defines the MCP tool schema for adding a passive damage.
func PassiveAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "passive_add",
		Description: "Adds a recurring damage source such as an aura or a hazard.",
	}
}

// PassiveAddHandler adds a passive damage.
func PassiveAddHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PassiveAddInput, PassiveAddResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PassiveAddInput) (*mcp.CallToolResult, PassiveAddResult, error) {
		damageID, err := s.AddPassiveDamage(passive.Input{
			Name:        input.Name,
			Dice:        input.Dice,
			Type:        input.Type,
			Description: input.Description,
		})
		if err != nil {
			return nil, PassiveAddResult{}, toolError(printer, err)
		}
		damages, err := s.PassiveDamages()
		if err != nil {
			return nil, PassiveAddResult{}, toolError(printer, err)
		}
		for _, d := range damages {
			if d.ID == damageID {
				return nil, PassiveAddResult{Damage: d}, nil
			}
		}
		return nil, PassiveAddResult{Damage: passive.Damage{ID: damageID}}, nil
	}
}

// PassiveListInput is empty.
type PassiveListInput struct{}

// PassiveListResult lists the passive damages.
type PassiveListResult struct {
	Damages []passive.Damage `json:"damages" jsonschema:"passive damages in order"`
}

// PassiveListTool defines the MCP tool schema for listing passive damages.
func PassiveListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "passive_list",
		Description: "Lists the recurring damage sources.",
	}
}

// PassiveListHandler lists passive damages.
func PassiveListHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PassiveListInput, PassiveListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ PassiveListInput) (*mcp.CallToolResult, PassiveListResult, error) {
		damages, err := s.PassiveDamages()
		if err != nil {
			return nil, PassiveListResult{}, toolError(printer, err)
		}
		return nil, PassiveListResult{Damages: damages}, nil
	}
}

// PassiveApplyInput represents the MCP tool input for applying a passive damage.
type PassiveApplyInput struct {
	PassiveID   string `json:"passive_id" jsonschema:"passive damage identifier"`
	CharacterID string `json:"character_id" jsonschema:"character identifier"`
	Seed        *int64 `json:"seed,omitempty" jsonschema:"seed for a reproducible roll"`
}

// PassiveApplyResult reports the roll and the damage it dealt.
type PassiveApplyResult struct {
	Seed    int64                  `json:"seed" jsonschema:"seed that reproduces the roll"`
	Faces   []int                  `json:"faces" jsonschema:"rolled faces"`
	Total   int                    `json:"total" jsonschema:"rolled damage"`
	Damage  character.DamageResult `json:"damage" jsonschema:"damage dealt and absorbed"`
	Message string                 `json:"message" jsonschema:"localized acknowledgment"`
}

// PassiveApplyTool defines the MCP tool schema for applying a passive damage.
func PassiveApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "passive_apply",
		Description: "Rolls a passive damage and deals the total to one character.",
	}
}

// PassiveApplyHandler rolls and applies a passive damage.
func PassiveApplyHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[PassiveApplyInput, PassiveApplyResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PassiveApplyInput) (*mcp.CallToolResult, PassiveApplyResult, error) {
		hit, err := s.ApplyPassiveDamage(input.PassiveID, input.CharacterID, input.Seed)
		if err != nil {
			return nil, PassiveApplyResult{}, toolError(printer, err)
		}
		c, err := s.Character(input.CharacterID)
		if err != nil {
			return nil, PassiveApplyResult{}, toolError(printer, err)
		}
		return nil, PassiveApplyResult{
			Seed:    hit.Roll.Seed,
			Faces:   hit.Roll.Faces,
			Total:   hit.Roll.Total,
			Damage:  hit.Damage,
			Message: printer.Sprintf(notice.KeyPassiveApplied, hit.Roll.Name, hit.Roll.Total, printer.DamageType(hit.Roll.Type), c.Name),
		}, nil
	}
}
