// Package passive keeps the list of recurring damage sources, such as auras,
// hazards and lingering effects, that the DM applies between turns.
package passive

import (
	"encoding/json"
	"strings"

	"github.com/louisbranch/dmscreen/internal/dice"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/id"
)

// Damage is one passive damage source.
type Damage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Dice        string `json:"dice"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Input is the caller-supplied content of a passive damage.
type Input struct {
	Name        string
	Dice        string
	Type        string
	Description string
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, apperrors.New(apperrors.CodePassiveEmptyName, "passive damage name is required")
	}
	in.Dice = strings.TrimSpace(in.Dice)
	if _, err := dice.Parse(in.Dice); err != nil {
		return Input{}, err
	}
	in.Type = strings.TrimSpace(in.Type)
	return in, nil
}

type storedDamage Damage

// UnmarshalJSON reads a stored passive damage. Records saved without an id
// receive a new one.
func (d *Damage) UnmarshalJSON(data []byte) error {
	var stored storedDamage
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	if stored.ID == "" {
		damageID, err := id.NewID()
		if err != nil {
			return err
		}
		stored.ID = damageID
	}
	*d = Damage(stored)
	return nil
}

// List is the ordered set of passive damages. It is not safe for concurrent
// use.
type List struct {
	damages  []Damage
	newID    func() (string, error)
	onChange func()
}

// NewList returns an empty list.
func NewList() *List {
	return &List{damages: []Damage{}, newID: id.NewID}
}

// OnChange registers fn to run after every successful mutation.
func (l *List) OnChange(fn func()) {
	l.onChange = fn
}

func (l *List) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

// Len returns the number of passive damages.
func (l *List) Len() int {
	return len(l.damages)
}

// Add appends a passive damage and returns its id.
func (l *List) Add(in Input) (string, error) {
	in, err := in.normalize()
	if err != nil {
		return "", err
	}
	damageID, err := l.newID()
	if err != nil {
		return "", err
	}
	l.damages = append(l.damages, Damage{
		ID:          damageID,
		Name:        in.Name,
		Dice:        in.Dice,
		Type:        in.Type,
		Description: in.Description,
	})
	l.changed()
	return damageID, nil
}

// Update replaces the content of a passive damage, keeping its id and
// position.
func (l *List) Update(damageID string, in Input) error {
	d, err := l.find(damageID)
	if err != nil {
		return err
	}
	in, err = in.normalize()
	if err != nil {
		return err
	}
	*d = Damage{ID: damageID, Name: in.Name, Dice: in.Dice, Type: in.Type, Description: in.Description}
	l.changed()
	return nil
}

// Delete removes a passive damage.
func (l *List) Delete(damageID string) error {
	for i := range l.damages {
		if l.damages[i].ID == damageID {
			l.damages = append(l.damages[:i], l.damages[i+1:]...)
			l.changed()
			return nil
		}
	}
	return notFound(damageID)
}

// Get returns one passive damage.
func (l *List) Get(damageID string) (Damage, error) {
	d, err := l.find(damageID)
	if err != nil {
		return Damage{}, err
	}
	return *d, nil
}

// List returns every passive damage in order.
func (l *List) List() []Damage {
	return append([]Damage{}, l.damages...)
}

// Replace swaps the list for damages, as loaded from storage. It does not
// fire the change hook.
func (l *List) Replace(damages []Damage) {
	l.damages = append([]Damage{}, damages...)
}

func (l *List) find(damageID string) (*Damage, error) {
	for i := range l.damages {
		if l.damages[i].ID == damageID {
			return &l.damages[i], nil
		}
	}
	return nil, notFound(damageID)
}

func notFound(damageID string) error {
	return apperrors.WithMetadata(apperrors.CodePassiveNotFound, "passive damage not found",
		map[string]string{"PassiveID": damageID})
}
