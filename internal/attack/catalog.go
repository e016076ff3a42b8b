package attack

import (
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/id"
)

// Catalog is the ordered collection of attack definitions. It is not safe
// for concurrent use.
type Catalog struct {
	attacks  []Definition
	newID    func() (string, error)
	onChange func()
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{newID: id.NewID}
}

// OnChange registers fn to run after every successful mutation.
func (c *Catalog) OnChange(fn func()) {
	c.onChange = fn
}

func (c *Catalog) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Len returns the number of attacks.
func (c *Catalog) Len() int {
	return len(c.attacks)
}

// Create appends a new attack and returns its id.
func (c *Catalog) Create(in Input) (string, error) {
	in, err := in.normalize()
	if err != nil {
		return "", err
	}
	attackID, err := c.newID()
	if err != nil {
		return "", err
	}
	c.attacks = append(c.attacks, definitionFromInput(attackID, in))
	c.changed()
	return attackID, nil
}

// Duplicate inserts a copy of the attack right after it. The copy gets a new
// id and the name suffixed with CopySuffix.
func (c *Catalog) Duplicate(attackID string) (string, error) {
	idx, err := c.indexOf(attackID)
	if err != nil {
		return "", err
	}
	copyID, err := c.newID()
	if err != nil {
		return "", err
	}
	dup := c.attacks[idx].Clone()
	dup.ID = copyID
	dup.Name += CopySuffix

	c.attacks = append(c.attacks, Definition{})
	copy(c.attacks[idx+2:], c.attacks[idx+1:])
	c.attacks[idx+1] = dup
	c.changed()
	return copyID, nil
}

// Move removes the attack and reinserts it at target, shifting the others.
// target is the final index and must be within [0, Len()).
func (c *Catalog) Move(attackID string, target int) error {
	idx, err := c.indexOf(attackID)
	if err != nil {
		return err
	}
	if target < 0 || target >= len(c.attacks) {
		return apperrors.WithMetadata(apperrors.CodeAttackPositionOutRange, "target position is out of range",
			map[string]string{"AttackID": attackID, "Index": itoa(target)})
	}
	if idx == target {
		return nil
	}
	moved := c.attacks[idx]
	if idx < target {
		copy(c.attacks[idx:target], c.attacks[idx+1:target+1])
	} else {
		copy(c.attacks[target+1:idx+1], c.attacks[target:idx])
	}
	c.attacks[target] = moved
	c.changed()
	return nil
}

// Get returns a copy of the attack.
func (c *Catalog) Get(attackID string) (Definition, error) {
	idx, err := c.indexOf(attackID)
	if err != nil {
		return Definition{}, err
	}
	return c.attacks[idx].Clone(), nil
}

// List returns copies of every attack in catalog order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.attacks))
	for i, a := range c.attacks {
		out[i] = a.Clone()
	}
	return out
}

// Update replaces the content of an attack, keeping its id and position.
func (c *Catalog) Update(attackID string, in Input) error {
	idx, err := c.indexOf(attackID)
	if err != nil {
		return err
	}
	in, err = in.normalize()
	if err != nil {
		return err
	}
	c.attacks[idx] = definitionFromInput(attackID, in)
	c.changed()
	return nil
}

// Delete removes the attack.
func (c *Catalog) Delete(attackID string) error {
	idx, err := c.indexOf(attackID)
	if err != nil {
		return err
	}
	c.attacks = append(c.attacks[:idx], c.attacks[idx+1:]...)
	c.changed()
	return nil
}

// Replace swaps the whole catalog for defs, as loaded from storage. It does
// not fire the change hook.
func (c *Catalog) Replace(defs []Definition) {
	c.attacks = make([]Definition, len(defs))
	for i, d := range defs {
		c.attacks[i] = d.Clone()
	}
}

func (c *Catalog) indexOf(attackID string) (int, error) {
	for i, a := range c.attacks {
		if a.ID == attackID {
			return i, nil
		}
	}
	return -1, apperrors.WithMetadata(apperrors.CodeAttackNotFound, "attack not found",
		map[string]string{"AttackID": attackID})
}
