package session

import (
	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/player"
)

// AddPlayer creates a player and returns its id.
func (c *Controller) AddPlayer(name string) (string, error) {
	var playerID string
	err := c.mutate(func() error {
		var err error
		playerID, err = c.roster.Add(name)
		return err
	})
	return playerID, err
}

// GrantXP adds amount to one player's session XP.
func (c *Controller) GrantXP(playerID string, amount int) error {
	return c.mutate(func() error {
		return c.roster.GrantXP(playerID, amount)
	})
}

// GrantXPToAll adds amount to every player's session XP.
func (c *Controller) GrantXPToAll(amount int) error {
	return c.mutate(func() error {
		return c.roster.GrantXPToAll(amount)
	})
}

// RevokeXP subtracts amount from one player's session XP.
func (c *Controller) RevokeXP(playerID string, amount int) error {
	return c.mutate(func() error {
		return c.roster.RevokeXP(playerID, amount)
	})
}

// RenamePlayer changes a player's display name.
func (c *Controller) RenamePlayer(playerID, name string) error {
	return c.mutate(func() error {
		return c.roster.Rename(playerID, name)
	})
}

// SetPlayerNotes replaces a player's notes.
func (c *Controller) SetPlayerNotes(playerID, notes string) error {
	return c.mutate(func() error {
		return c.roster.SetNotes(playerID, notes)
	})
}

// DeletePlayer removes a player and its history.
func (c *Controller) DeletePlayer(playerID string) error {
	return c.mutate(func() error {
		return c.roster.Delete(playerID)
	})
}

// Players lists the roster in order.
func (c *Controller) Players() ([]player.Player, error) {
	var players []player.Player
	err := c.read(func() error {
		players = c.roster.List()
		return nil
	})
	return players, err
}

// Player returns one player.
func (c *Controller) Player(playerID string) (player.Player, error) {
	var p player.Player
	err := c.read(func() error {
		var err error
		p, err = c.roster.Get(playerID)
		return err
	})
	return p, err
}

// Totals maps player id to session XP.
func (c *Controller) Totals() (map[string]int, error) {
	var totals map[string]int
	err := c.read(func() error {
		totals = c.roster.Totals()
		return nil
	})
	return totals, err
}

// MostUsedXPAmounts returns the n most frequent grant amounts.
func (c *Controller) MostUsedXPAmounts(n int) ([]int, error) {
	var amounts []int
	err := c.read(func() error {
		var err error
		amounts, err = c.roster.MostUsedXPAmounts(n)
		return err
	})
	return amounts, err
}

// AddCounter adds a counter to a player and returns its id.
func (c *Controller) AddCounter(playerID string, in player.CounterInput) (string, error) {
	var counterID string
	err := c.mutate(func() error {
		var err error
		counterID, err = c.roster.AddCounter(playerID, in)
		return err
	})
	return counterID, err
}

// UpdateCounter replaces a counter's content.
func (c *Controller) UpdateCounter(playerID, counterID string, in player.CounterInput) error {
	return c.mutate(func() error {
		return c.roster.UpdateCounter(playerID, counterID, in)
	})
}

// DeleteCounter removes a counter from a player.
func (c *Controller) DeleteCounter(playerID, counterID string) error {
	return c.mutate(func() error {
		return c.roster.DeleteCounter(playerID, counterID)
	})
}

// AdjustCounter moves a counter by steps times its step and returns the new value.
func (c *Controller) AdjustCounter(playerID, counterID string, steps int) (int, error) {
	var value int
	err := c.mutate(func() error {
		var err error
		value, err = c.roster.AdjustCounter(playerID, counterID, steps)
		return err
	})
	return value, err
}

// CreateAttack appends an attack and returns its id.
func (c *Controller) CreateAttack(in attack.Input) (string, error) {
	var attackID string
	err := c.mutate(func() error {
		var err error
		attackID, err = c.catalog.Create(in)
		return err
	})
	return attackID, err
}

// DuplicateAttack copies an attack and returns the copy's id.
func (c *Controller) DuplicateAttack(attackID string) (string, error) {
	var copyID string
	err := c.mutate(func() error {
		var err error
		copyID, err = c.catalog.Duplicate(attackID)
		return err
	})
	return copyID, err
}

// MoveAttack moves an attack to target, a zero-based index.
func (c *Controller) MoveAttack(attackID string, target int) error {
	return c.mutate(func() error {
		return c.catalog.Move(attackID, target)
	})
}

// UpdateAttack replaces an attack's content in place.
func (c *Controller) UpdateAttack(attackID string, in attack.Input) error {
	return c.mutate(func() error {
		return c.catalog.Update(attackID, in)
	})
}

// DeleteAttack removes an attack.
func (c *Controller) DeleteAttack(attackID string) error {
	return c.mutate(func() error {
		return c.catalog.Delete(attackID)
	})
}

// Attacks lists the catalog in order.
func (c *Controller) Attacks() ([]attack.Definition, error) {
	var attacks []attack.Definition
	err := c.read(func() error {
		attacks = c.catalog.List()
		return nil
	})
	return attacks, err
}

// Attack returns one attack definition.
func (c *Controller) Attack(attackID string) (attack.Definition, error) {
	var def attack.Definition
	err := c.read(func() error {
		var err error
		def, err = c.catalog.Get(attackID)
		return err
	})
	return def, err
}
