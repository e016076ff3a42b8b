// Package character tracks hit points, temporary hit points and turns for the
// creatures of an encounter.
package character

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxLogEntries caps each character's log. Older entries are dropped first.
const MaxLogEntries = 50

// Action names a log entry.
type Action string

const (
	ActionCreated     Action = "created"
	ActionEdited      Action = "edited"
	ActionHealed      Action = "healed"
	ActionTempHP      Action = "temp_hp"
	ActionDamaged     Action = "damaged"
	ActionHPReset     Action = "hp_reset"
	ActionRegenerated Action = "regenerated"
	ActionTurnStarted Action = "turn_started"
	ActionTurnEnded   Action = "turn_ended"
	ActionTurnsReset  Action = "turns_reset"
)

// LogEntry records one change to a character. Amount is the action's
// magnitude: HP healed or taken, temporary HP added, or the turn number.
type LogEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Turn         int       `json:"turn"`
	Action       Action    `json:"action"`
	Amount       int       `json:"amount"`
	HPBefore     int       `json:"hpBefore"`
	HPAfter      int       `json:"hpAfter"`
	TempHPBefore int       `json:"tempHpBefore"`
	TempHPAfter  int       `json:"tempHpAfter"`
}

// Character is one tracked creature. CurrentHP stays within [0, MaxHP].
type Character struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MaxHP        int        `json:"maxHp"`
	CurrentHP    int        `json:"currentHp"`
	TempHP       int        `json:"tempHp"`
	Regeneration int        `json:"regeneration"`
	CreatedAt    time.Time  `json:"createdAt"`
	Logs         []LogEntry `json:"logs"`
}

// Alive reports whether the character has hit points left.
func (c Character) Alive() bool {
	return c.CurrentHP > 0
}

// EffectiveHP is current plus temporary hit points.
func (c Character) EffectiveHP() int {
	return c.CurrentHP + c.TempHP
}

// Clone returns a deep copy of c.
func (c Character) Clone() Character {
	out := c
	out.Logs = append([]LogEntry{}, c.Logs...)
	return out
}

// Encounter is the persisted state of the tracker.
type Encounter struct {
	Characters  []Character `json:"characters"`
	CurrentTurn int         `json:"currentTurn"`
	TurnActive  bool        `json:"isTurnActive"`
}

// Clone returns a deep copy of e with nil lists replaced by empty ones.
func (e Encounter) Clone() Encounter {
	out := e
	out.Characters = make([]Character, len(e.Characters))
	for i, c := range e.Characters {
		out.Characters[i] = c.Clone()
	}
	return out
}

type storedCharacter struct {
	ID           json.RawMessage   `json:"id"`
	Name         string            `json:"name"`
	MaxHP        int               `json:"maxHp"`
	CurrentHP    int               `json:"currentHp"`
	TempHP       int               `json:"tempHp"`
	Regeneration int               `json:"regeneration"`
	CreatedAt    time.Time         `json:"createdAt"`
	Logs         []json.RawMessage `json:"logs"`
}

// UnmarshalJSON reads a stored character. Older exports carry numeric ids
// and logs stamped with a local clock time; the id is kept as text and
// those log entries are dropped.
func (c *Character) UnmarshalJSON(data []byte) error {
	var stored storedCharacter
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	characterID, err := decodeID(stored.ID)
	if err != nil {
		return err
	}
	out := Character{
		ID:           characterID,
		Name:         stored.Name,
		MaxHP:        stored.MaxHP,
		CurrentHP:    stored.CurrentHP,
		TempHP:       stored.TempHP,
		Regeneration: stored.Regeneration,
		CreatedAt:    stored.CreatedAt.UTC(),
		Logs:         make([]LogEntry, 0, len(stored.Logs)),
	}
	for _, raw := range stored.Logs {
		var entry LogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		entry.Timestamp = entry.Timestamp.UTC()
		out.Logs = append(out.Logs, entry)
	}
	*c = out
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", fmt.Errorf("decode character id: %w", err)
	}
	return strings.ReplaceAll(number.String(), ".", "-"), nil
}
