package session

import (
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/combat"
	"github.com/louisbranch/dmscreen/internal/passive"
)

// PassiveHit is a passive damage rolled against one character.
type PassiveHit struct {
	Roll   combat.PassiveRoll     `json:"roll"`
	Damage character.DamageResult `json:"damage"`
}

// CreateCharacter adds a character at full hit points and returns its id.
func (c *Controller) CreateCharacter(in character.Input) (string, error) {
	var characterID string
	err := c.mutate(func() error {
		var err error
		characterID, err = c.tracker.Create(in)
		return err
	})
	return characterID, err
}

// EditCharacter applies the set fields of e.
func (c *Controller) EditCharacter(characterID string, e character.Edit) error {
	return c.mutate(func() error {
		return c.tracker.Edit(characterID, e)
	})
}

// DeleteCharacter removes a character.
func (c *Controller) DeleteCharacter(characterID string) error {
	return c.mutate(func() error {
		return c.tracker.Delete(characterID)
	})
}

// HealCharacter restores hit points and returns how many were restored.
func (c *Controller) HealCharacter(characterID string, amount int) (int, error) {
	var healed int
	err := c.mutate(func() error {
		var err error
		healed, err = c.tracker.Heal(characterID, amount)
		return err
	})
	return healed, err
}

// AddTempHP adds temporary hit points and returns the new temporary total.
func (c *Controller) AddTempHP(characterID string, amount int) (int, error) {
	var total int
	err := c.mutate(func() error {
		var err error
		total, err = c.tracker.AddTempHP(characterID, amount)
		return err
	})
	return total, err
}

// DamageCharacter applies a hit to a character.
func (c *Controller) DamageCharacter(characterID string, amount int) (character.DamageResult, error) {
	var result character.DamageResult
	err := c.mutate(func() error {
		var err error
		result, err = c.tracker.Damage(characterID, amount)
		return err
	})
	return result, err
}

// ResetCharacterHP restores one character to full hit points.
func (c *Controller) ResetCharacterHP(characterID string) error {
	return c.mutate(func() error {
		return c.tracker.ResetHP(characterID)
	})
}

// ResetAllHP restores every character to full hit points.
func (c *Controller) ResetAllHP() error {
	return c.mutate(func() error {
		c.tracker.ResetAllHP()
		return nil
	})
}

// StartTurn advances the turn, applies regeneration and returns the new
// turn number.
func (c *Controller) StartTurn() (int, error) {
	var turn int
	err := c.mutate(func() error {
		turn = c.tracker.StartTurn()
		return nil
	})
	return turn, err
}

// EndTurn closes the turn in progress.
func (c *Controller) EndTurn() error {
	return c.mutate(func() error {
		return c.tracker.EndTurn()
	})
}

// ResetTurns sets the turn counter back to zero.
func (c *Controller) ResetTurns() error {
	return c.mutate(func() error {
		c.tracker.ResetTurns()
		return nil
	})
}

// ClearLogs empties every character's log.
func (c *Controller) ClearLogs() error {
	return c.mutate(func() error {
		c.tracker.ClearLogs()
		return nil
	})
}

// Characters lists the encounter in creation order.
func (c *Controller) Characters() ([]character.Character, error) {
	var characters []character.Character
	err := c.read(func() error {
		characters = c.tracker.List()
		return nil
	})
	return characters, err
}

// Character returns one character.
func (c *Controller) Character(characterID string) (character.Character, error) {
	var ch character.Character
	err := c.read(func() error {
		var err error
		ch, err = c.tracker.Get(characterID)
		return err
	})
	return ch, err
}

// Turn returns the current turn number and whether it is in progress.
func (c *Controller) Turn() (int, bool, error) {
	var (
		turn   int
		active bool
	)
	err := c.read(func() error {
		turn, active = c.tracker.Turn()
		return nil
	})
	return turn, active, err
}

// ImportEncounter replaces the encounter with e after validating it.
func (c *Controller) ImportEncounter(e character.Encounter) error {
	return c.mutate(func() error {
		return c.tracker.Import(e)
	})
}

// ExportEncounter returns the whole encounter.
func (c *Controller) ExportEncounter() (character.Encounter, error) {
	var e character.Encounter
	err := c.read(func() error {
		e = c.tracker.Encounter()
		return nil
	})
	return e, err
}

// AddPassiveDamage appends a passive damage and returns its id.
func (c *Controller) AddPassiveDamage(in passive.Input) (string, error) {
	var damageID string
	err := c.mutate(func() error {
		var err error
		damageID, err = c.passives.Add(in)
		return err
	})
	return damageID, err
}

// UpdatePassiveDamage replaces a passive damage's content.
func (c *Controller) UpdatePassiveDamage(damageID string, in passive.Input) error {
	return c.mutate(func() error {
		return c.passives.Update(damageID, in)
	})
}

// DeletePassiveDamage removes a passive damage.
func (c *Controller) DeletePassiveDamage(damageID string) error {
	return c.mutate(func() error {
		return c.passives.Delete(damageID)
	})
}

// PassiveDamages lists the passive damages in order.
func (c *Controller) PassiveDamages() ([]passive.Damage, error) {
	var damages []passive.Damage
	err := c.read(func() error {
		damages = c.passives.List()
		return nil
	})
	return damages, err
}

// ApplyPassiveDamage rolls a passive damage and deals the total to a
// character. Nothing changes when either id is unknown.
func (c *Controller) ApplyPassiveDamage(damageID, characterID string, seed *int64) (PassiveHit, error) {
	var hit PassiveHit
	err := c.mutate(func() error {
		d, err := c.passives.Get(damageID)
		if err != nil {
			return err
		}
		if _, err := c.tracker.Get(characterID); err != nil {
			return err
		}
		roll, err := combat.RollPassive(d, seed)
		if err != nil {
			return err
		}
		result, err := c.tracker.Damage(characterID, roll.Total)
		if err != nil {
			return err
		}
		hit = PassiveHit{Roll: roll, Damage: result}
		return nil
	})
	return hit, err
}
