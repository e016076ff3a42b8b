package combat

import (
	"github.com/louisbranch/dmscreen/internal/dice"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/random"
)

// PassiveRoll is one rolled passive damage. Total never drops below zero.
type PassiveRoll struct {
	Seed  int64  `json:"seed"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Faces []int  `json:"faces"`
	Bonus int    `json:"bonus"`
	Total int    `json:"total"`
}

// RollPassive rolls a passive damage once. A nil seed draws a fresh one.
func RollPassive(d passive.Damage, seed *int64) (PassiveRoll, error) {
	expr, err := dice.Parse(d.Dice)
	if err != nil {
		return PassiveRoll{}, err
	}
	resolved, err := random.ResolveSeed(seed)
	if err != nil {
		return PassiveRoll{}, err
	}
	faces, total, err := dice.NewRoller(resolved).RollExpression(expr)
	if err != nil {
		return PassiveRoll{}, err
	}
	return PassiveRoll{
		Seed:  resolved,
		Name:  d.Name,
		Type:  d.Type,
		Faces: faces,
		Bonus: expr.Bonus,
		Total: max(total, 0),
	}, nil
}
