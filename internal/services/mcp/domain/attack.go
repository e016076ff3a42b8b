package domain

import (
	"context"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/combat"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DamageRollInput is one damage component of an attack.
type DamageRollInput struct {
	Dice      string `json:"dice" jsonschema:"dice expression such as 2d6 or 1d8+3"`
	Min       int    `json:"min,omitempty" jsonschema:"lowest value each die may show (default 1)"`
	Bonus     int    `json:"bonus,omitempty" jsonschema:"flat bonus added to this roll"`
	Type      string `json:"type" jsonschema:"damage type id (slashing, fire, necrotic, ...)"`
	LifeSteal int    `json:"life_steal,omitempty" jsonschema:"percentage of this damage healed by the attacker (0-100)"`
}

// RerollDieInput describes dice that may replace low damage faces.
type RerollDieInput struct {
	Dice string `json:"dice" jsonschema:"dice expression such as 1d6"`
	Min  int    `json:"min,omitempty" jsonschema:"lowest value each die may show (default 1)"`
	Type string `json:"type" jsonschema:"damage type whose dice may be replaced"`
}

// AttackSummary is an attack as returned by the tools.
type AttackSummary struct {
	ID          string            `json:"id" jsonschema:"attack identifier"`
	Name        string            `json:"name" jsonschema:"attack name"`
	Position    int               `json:"position" jsonschema:"zero-based position in the catalog"`
	DamageRolls []DamageRollInput `json:"damage_rolls" jsonschema:"damage components"`
	RerollDice  []RerollDieInput  `json:"reroll_dice" jsonschema:"reroll dice"`
}

func attackSummary(def attack.Definition, position int) AttackSummary {
	out := AttackSummary{
		ID:          def.ID,
		Name:        def.Name,
		Position:    position,
		DamageRolls: make([]DamageRollInput, 0, len(def.DamageRolls)),
		RerollDice:  make([]RerollDieInput, 0, len(def.RerollDice)),
	}
	for _, roll := range def.DamageRolls {
		out.DamageRolls = append(out.DamageRolls, DamageRollInput{
			Dice:      roll.Dice,
			Min:       roll.Min,
			Bonus:     roll.Bonus,
			Type:      roll.Type,
			LifeSteal: roll.LifeSteal.Percentage,
		})
	}
	for _, die := range def.RerollDice {
		out.RerollDice = append(out.RerollDice, RerollDieInput{Dice: die.Dice, Min: die.Min, Type: die.Type})
	}
	return out
}

func attackSummaries(defs []attack.Definition) []AttackSummary {
	out := make([]AttackSummary, 0, len(defs))
	for i, def := range defs {
		out = append(out, attackSummary(def, i))
	}
	return out
}

// AttackCreateInput represents the MCP tool input for creating an attack.
type AttackCreateInput struct {
	Name        string            `json:"name" jsonschema:"attack name"`
	DamageRolls []DamageRollInput `json:"damage_rolls,omitempty" jsonschema:"damage components"`
	RerollDice  []RerollDieInput  `json:"reroll_dice,omitempty" jsonschema:"reroll dice"`
}

func (in AttackCreateInput) attackInput() attack.Input {
	out := attack.Input{Name: in.Name}
	for _, roll := range in.DamageRolls {
		out.DamageRolls = append(out.DamageRolls, attack.DamageRoll{
			Dice:      roll.Dice,
			Min:       roll.Min,
			Bonus:     roll.Bonus,
			Type:      roll.Type,
			LifeSteal: attack.LifeSteal{Percentage: roll.LifeSteal},
		})
	}
	for _, die := range in.RerollDice {
		out.RerollDice = append(out.RerollDice, attack.RerollDie{Dice: die.Dice, Min: die.Min, Type: die.Type})
	}
	return out
}

// AttackResult is a single attack after a catalog change.
type AttackResult struct {
	Attack  AttackSummary `json:"attack" jsonschema:"the attack"`
	Message string        `json:"message,omitempty" jsonschema:"localized acknowledgment"`
}

// AttackCreateTool defines the MCP tool schema for creating an attack.
func AttackCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_create",
		Description: "Appends an attack to the end of the catalog.",
	}
}

// AttackCreateHandler creates an attack.
func AttackCreateHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackCreateInput, AttackResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AttackCreateInput) (*mcp.CallToolResult, AttackResult, error) {
		attackID, err := s.CreateAttack(input.attackInput())
		if err != nil {
			return nil, AttackResult{}, toolError(printer, err)
		}
		return attackWithPosition(s, printer, attackID, "")
	}
}

// AttackIDInput identifies one attack.
type AttackIDInput struct {
	AttackID string `json:"attack_id" jsonschema:"attack identifier"`
}

// AttackDuplicateTool defines the MCP tool schema for duplicating an attack.
func AttackDuplicateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_duplicate",
		Description: "Copies an attack right after the original. The copy's name ends with \" (Copia)\".",
	}
}

// AttackDuplicateHandler duplicates an attack.
func AttackDuplicateHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackIDInput, AttackResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AttackIDInput) (*mcp.CallToolResult, AttackResult, error) {
		copyID, err := s.DuplicateAttack(input.AttackID)
		if err != nil {
			return nil, AttackResult{}, toolError(printer, err)
		}
		source, err := s.Attack(input.AttackID)
		if err != nil {
			return nil, AttackResult{}, toolError(printer, err)
		}
		return attackWithPosition(s, printer, copyID, printer.Sprintf(notice.KeyAttackDuplicated, source.Name))
	}
}

func attackWithPosition(s Session, printer *notice.Printer, attackID, message string) (*mcp.CallToolResult, AttackResult, error) {
	attacks, err := s.Attacks()
	if err != nil {
		return nil, AttackResult{}, toolError(printer, err)
	}
	for i, def := range attacks {
		if def.ID == attackID {
			return nil, AttackResult{Attack: attackSummary(def, i), Message: message}, nil
		}
	}
	_, err = s.Attack(attackID)
	return nil, AttackResult{}, toolError(printer, err)
}

// AttackMoveInput represents the MCP tool input for reordering an attack.
type AttackMoveInput struct {
	AttackID string `json:"attack_id" jsonschema:"attack identifier"`
	Position int    `json:"position" jsonschema:"zero-based target position"`
}

// AttackListResult lists the catalog in order.
type AttackListResult struct {
	Attacks []AttackSummary `json:"attacks" jsonschema:"attacks in catalog order"`
}

// AttackMoveTool defines the MCP tool schema for reordering an attack.
func AttackMoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_move",
		Description: "Moves an attack to a zero-based position; the others keep their relative order.",
	}
}

// AttackMoveHandler moves an attack and returns the new order.
func AttackMoveHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackMoveInput, AttackListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AttackMoveInput) (*mcp.CallToolResult, AttackListResult, error) {
		if err := s.MoveAttack(input.AttackID, input.Position); err != nil {
			return nil, AttackListResult{}, toolError(printer, err)
		}
		return listAttacks(s, printer)
	}
}

// AttackDeleteResult echoes the removed id.
type AttackDeleteResult struct {
	ID string `json:"id" jsonschema:"removed attack identifier"`
}

// AttackDeleteTool defines the MCP tool schema for deleting an attack.
func AttackDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_delete",
		Description: "Removes an attack from the catalog.",
	}
}

// AttackDeleteHandler deletes an attack.
func AttackDeleteHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackIDInput, AttackDeleteResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AttackIDInput) (*mcp.CallToolResult, AttackDeleteResult, error) {
		if err := s.DeleteAttack(input.AttackID); err != nil {
			return nil, AttackDeleteResult{}, toolError(printer, err)
		}
		return nil, AttackDeleteResult{ID: input.AttackID}, nil
	}
}

// AttackListInput is empty.
type AttackListInput struct{}

// AttackListTool defines the MCP tool schema for listing attacks.
func AttackListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_list",
		Description: "Lists attacks in catalog order.",
	}
}

// AttackListHandler lists the catalog.
func AttackListHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackListInput, AttackListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ AttackListInput) (*mcp.CallToolResult, AttackListResult, error) {
		return listAttacks(s, printer)
	}
}

func listAttacks(s Session, printer *notice.Printer) (*mcp.CallToolResult, AttackListResult, error) {
	attacks, err := s.Attacks()
	if err != nil {
		return nil, AttackListResult{}, toolError(printer, err)
	}
	return nil, AttackListResult{Attacks: attackSummaries(attacks)}, nil
}

// AttackRollInput represents the MCP tool input for rolling an attack.
type AttackRollInput struct {
	AttackID       string `json:"attack_id" jsonschema:"attack identifier"`
	Critical       bool   `json:"critical,omitempty" jsonschema:"roll as a critical hit"`
	Rule           string `json:"rule,omitempty" jsonschema:"critical rule: default, maximized or massive"`
	CharacterLevel int    `json:"character_level,omitempty" jsonschema:"character level for the massive rule"`
	ApplyRerolls   bool   `json:"apply_rerolls,omitempty" jsonschema:"roll the attack's reroll dice and replace the lowest faces"`
	Seed           *int64 `json:"seed,omitempty" jsonschema:"seed for a reproducible roll"`
}

// DamageGroupResult is the rolled damage of one type.
type DamageGroupResult struct {
	Type        string `json:"type" jsonschema:"damage type id"`
	DisplayName string `json:"display_name" jsonschema:"localized damage type name"`
	Color       string `json:"color" jsonschema:"display color for the damage type"`
	Dice        []int  `json:"dice" jsonschema:"rolled faces"`
	Replaced    []bool `json:"replaced" jsonschema:"whether each face came from a reroll"`
	Bonus       int    `json:"bonus" jsonschema:"flat bonus"`
	Total       int    `json:"total" jsonschema:"damage of this type"`
	Healed      int    `json:"healed" jsonschema:"healing from life steal"`
}

// AttackRollResult is a rolled attack.
type AttackRollResult struct {
	Name          string              `json:"name" jsonschema:"attack name"`
	Seed          int64               `json:"seed" jsonschema:"seed used; pass it back to replay the roll"`
	Critical      bool                `json:"critical" jsonschema:"whether the roll was a critical hit"`
	CriticalBonus int                 `json:"critical_bonus" jsonschema:"massive damage bonus"`
	Groups        []DamageGroupResult `json:"groups" jsonschema:"damage grouped by type"`
	GrandTotal    int                 `json:"grand_total" jsonschema:"total damage"`
	TotalHealed   int                 `json:"total_healed" jsonschema:"total healing"`
	Summary       string              `json:"summary" jsonschema:"localized total line"`
}

// AttackRollTool defines the MCP tool schema for rolling an attack.
func AttackRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack_roll",
		Description: "Rolls an attack's damage, optionally as a critical hit and with reroll dice.",
	}
}

// AttackRollHandler rolls an attack.
func AttackRollHandler(s Session, printer *notice.Printer) mcp.ToolHandlerFor[AttackRollInput, AttackRollResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AttackRollInput) (*mcp.CallToolResult, AttackRollResult, error) {
		rule, err := combat.ParseCriticalRule(input.Rule)
		if err != nil {
			return nil, AttackRollResult{}, err
		}
		def, err := s.Attack(input.AttackID)
		if err != nil {
			return nil, AttackRollResult{}, toolError(printer, err)
		}
		outcome, err := combat.Roll(def, combat.RollOptions{
			Critical:       input.Critical,
			Rule:           rule,
			CharacterLevel: input.CharacterLevel,
			ApplyRerolls:   input.ApplyRerolls,
			Seed:           input.Seed,
		})
		if err != nil {
			return nil, AttackRollResult{}, toolError(printer, err)
		}

		result := AttackRollResult{
			Name:          outcome.Result.Name,
			Seed:          outcome.Seed,
			Critical:      outcome.Result.Critical,
			CriticalBonus: outcome.Result.CriticalBonus,
			Groups:        make([]DamageGroupResult, 0, len(outcome.Result.Groups)),
			GrandTotal:    outcome.Result.GrandTotal,
			TotalHealed:   outcome.Result.TotalHealed,
			Summary:       printer.Sprintf(notice.KeyGrandTotal, outcome.Result.GrandTotal),
		}
		for _, group := range outcome.Result.Groups {
			g := DamageGroupResult{
				Type:        group.Type,
				DisplayName: printer.DamageType(group.Type),
				Color:       combat.ColorFor(group.Type),
				Dice:        make([]int, 0, len(group.Rolls)),
				Replaced:    make([]bool, 0, len(group.Rolls)),
				Bonus:       group.Bonus,
				Total:       group.Total,
			}
			for _, die := range group.Rolls {
				g.Dice = append(g.Dice, die.Value)
				g.Replaced = append(g.Replaced, die.Replaced)
			}
			if group.LifeSteal != nil {
				g.Healed = group.LifeSteal.Healed
			}
			result.Groups = append(result.Groups, g)
		}
		return nil, result, nil
	}
}
