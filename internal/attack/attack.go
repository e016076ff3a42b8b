// Package attack holds the ordered catalog of attack definitions.
package attack

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/louisbranch/dmscreen/internal/dice"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
)

// CopySuffix is appended to the name of a duplicated attack.
const CopySuffix = " (Copia)"

// LifeSteal heals the attacker by a percentage of the damage dealt.
type LifeSteal struct {
	Percentage int `json:"percentage"`
}

// DamageRoll is one damage component of an attack.
type DamageRoll struct {
	Dice      string    `json:"dice"`
	Min       int       `json:"min"`
	Bonus     int       `json:"bonus"`
	Type      string    `json:"type"`
	LifeSteal LifeSteal `json:"lifeSteal"`
}

// RerollDie describes dice that may be rolled again after an attack resolves.
// The catalog stores it as given; the dice are parsed only when rolled.
type RerollDie struct {
	Dice string `json:"dice"`
	Min  int    `json:"min"`
	Type string `json:"type"`
}

// Definition is a named attack record.
type Definition struct {
	ID          string
	Name        string
	DamageRolls []DamageRoll
	RerollDice  []RerollDie
	// Extra carries attributes the catalog does not interpret.
	Extra map[string]json.RawMessage
}

// Input is the caller-supplied content of an attack.
type Input struct {
	Name        string
	DamageRolls []DamageRoll
	RerollDice  []RerollDie
	Extra       map[string]json.RawMessage
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, apperrors.New(apperrors.CodeAttackEmptyName, "attack name is required")
	}
	for i, roll := range in.DamageRolls {
		if err := validateDice(roll.Dice); err != nil {
			return Input{}, invalidRoll("damage", i, err)
		}
		if roll.LifeSteal.Percentage < 0 || roll.LifeSteal.Percentage > 100 {
			return Input{}, apperrors.WithMetadata(apperrors.CodeAttackInvalidRoll,
				"life steal percentage must be between 0 and 100",
				map[string]string{"Index": itoa(i)})
		}
	}
	extra := make(map[string]json.RawMessage, len(in.Extra))
	for key, value := range in.Extra {
		if reservedKeys[key] || key == legacyLifeStealKey {
			return Input{}, apperrors.WithMetadata(apperrors.CodeAttackInvalidRoll,
				"extra attribute shadows a reserved field",
				map[string]string{"Key": key})
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return Input{}, &apperrors.Error{
				Code:     apperrors.CodeAttackInvalidRoll,
				Message:  "extra attribute is not valid JSON",
				Metadata: map[string]string{"Key": key},
				Cause:    err,
			}
		}
		extra[key] = buf.Bytes()
	}
	in.Extra = nil
	if len(extra) > 0 {
		in.Extra = extra
	}
	return in, nil
}

func validateDice(expression string) error {
	_, err := dice.Parse(expression)
	return err
}

func invalidRoll(kind string, index int, cause error) error {
	return &apperrors.Error{
		Code:     apperrors.CodeAttackInvalidRoll,
		Message:  "invalid " + kind + " roll",
		Metadata: map[string]string{"Index": itoa(index)},
		Cause:    cause,
	}
}

// Clone returns a deep copy of d.
func (d Definition) Clone() Definition {
	out := d
	out.DamageRolls = append([]DamageRoll{}, d.DamageRolls...)
	out.RerollDice = append([]RerollDie{}, d.RerollDice...)
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func definitionFromInput(id string, in Input) Definition {
	return Definition{
		ID:          id,
		Name:        in.Name,
		DamageRolls: in.DamageRolls,
		RerollDice:  in.RerollDice,
		Extra:       in.Extra,
	}.Clone()
}
