// Package player keeps the party roster and its session XP ledger.
package player

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultCounterNames are the skill counters every new player starts with.
var DefaultCounterNames = []string{
	"Acrobacias", "Arcanos", "Atletismo", "Engaño", "Historia",
	"Interpretación", "Intimidación", "Investigación", "Juego de Manos",
	"Medicina", "Naturaleza", "Percepción", "Perspicacia", "Persuasión",
	"Religión", "Sigilo", "Supervivencia", "Trato con Animales",
}

// XPEntry is one applied grant (positive) or revocation (negative).
type XPEntry struct {
	Amount    int       `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Counter is a named tally on a player sheet.
type Counter struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Value   int    `json:"value"`
	Step    int    `json:"step"`
	Visible bool   `json:"isVisible"`
}

// Player is one roster entry. XP always equals the sum of XPHistory.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	XP        int       `json:"xp"`
	XPHistory []XPEntry `json:"xpHistory"`
	Notes     string    `json:"notes"`
	Counters  []Counter `json:"counters"`
}

// Clone returns a deep copy of p.
func (p Player) Clone() Player {
	out := p
	out.XPHistory = append([]XPEntry{}, p.XPHistory...)
	out.Counters = append([]Counter{}, p.Counters...)
	return out
}

// playerJSON has Player's fields without its methods.
type playerJSON Player

// MarshalJSON writes nil history and counters as empty lists, so a saved
// player never reads back as a record without counters.
func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(playerJSON(p.Clone()))
}

type storedPlayer struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	XP        *int            `json:"xp"`
	SessionXP *int            `json:"sessionXp"`
	XPHistory []XPEntry       `json:"xpHistory"`
	Notes     string          `json:"notes"`
	Counters  json.RawMessage `json:"counters"`
}

// UnmarshalJSON reads a stored player. Older records carry the total as
// sessionXp and lack the counters key; those receive the default set. A null
// counters value reads as no counters.
func (p *Player) UnmarshalJSON(data []byte) error {
	var stored storedPlayer
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	out := Player{
		ID:        stored.ID,
		Name:      stored.Name,
		XPHistory: stored.XPHistory,
		Notes:     stored.Notes,
	}
	switch {
	case stored.XP != nil:
		out.XP = *stored.XP
	case stored.SessionXP != nil:
		out.XP = *stored.SessionXP
	}
	if out.XPHistory == nil {
		out.XPHistory = []XPEntry{}
	}
	for i := range out.XPHistory {
		out.XPHistory[i].Timestamp = out.XPHistory[i].Timestamp.UTC()
	}
	if stored.Counters == nil {
		counters, err := defaultCounters()
		if err != nil {
			return err
		}
		out.Counters = counters
	} else {
		var counters []Counter
		if err := json.Unmarshal(stored.Counters, &counters); err != nil {
			return fmt.Errorf("decode player counters: %w", err)
		}
		out.Counters = append([]Counter{}, counters...)
	}
	*p = out
	return nil
}
