// Package combat resolves attack definitions into damage and healing.
package combat

import (
	"fmt"
	"sort"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/dice"
)

// Die is one rolled face. Replaced marks faces swapped in by a reroll.
type Die struct {
	Value    int  `json:"value"`
	Replaced bool `json:"isReplaced"`
}

// LifeStealResult is the healing produced by one damage type.
type LifeStealResult struct {
	Percentage int `json:"percentage"`
	Healed     int `json:"healed"`
}

// TypeResult groups every damage roll of one damage type.
type TypeResult struct {
	Type      string           `json:"type"`
	Rolls     []Die            `json:"rolls"`
	Bonus     int              `json:"bonus"`
	Total     int              `json:"total"`
	LifeSteal *LifeStealResult `json:"lifeSteal,omitempty"`

	parts []part
}

// part remembers which faces belong to which damage roll so totals and
// healing can be recomputed after replacement.
type part struct {
	start, end int
	bonus      int
	percentage int
}

// Result is a resolved attack.
type Result struct {
	Name          string       `json:"name"`
	Groups        []TypeResult `json:"results"`
	GrandTotal    int          `json:"grandTotal"`
	TotalHealed   int          `json:"totalHealed"`
	Critical      bool         `json:"critical"`
	CriticalBonus int          `json:"criticalBonus,omitempty"`
}

// Group returns the result for a damage type.
func (r Result) Group(damageType string) (TypeResult, bool) {
	for _, g := range r.Groups {
		if g.Type == damageType {
			return g, true
		}
	}
	return TypeResult{}, false
}

// faceFunc produces the faces for one damage roll.
type faceFunc func(expr dice.Expression) ([]int, error)

// Execute rolls every damage roll of the attack once.
func Execute(def attack.Definition, roller *dice.Roller) (Result, error) {
	return resolve(def, func(expr dice.Expression) ([]int, error) {
		return rollFaces(roller, expr.Dice)
	})
}

func rollFaces(roller *dice.Roller, spec dice.DiceSpec) ([]int, error) {
	if spec.Count == 0 {
		return []int{}, nil
	}
	return roller.Roll(spec)
}

func resolve(def attack.Definition, faces faceFunc) (Result, error) {
	result := Result{Name: def.Name}
	index := make(map[string]int)

	for i, roll := range def.DamageRolls {
		expr, err := dice.Parse(roll.Dice)
		if err != nil {
			return Result{}, fmt.Errorf("damage roll %d: %w", i, err)
		}
		values, err := faces(expr)
		if err != nil {
			return Result{}, fmt.Errorf("damage roll %d: %w", i, err)
		}
		floor := roll.Min
		if floor <= 0 {
			floor = 1
		}

		gi, ok := index[roll.Type]
		if !ok {
			gi = len(result.Groups)
			index[roll.Type] = gi
			result.Groups = append(result.Groups, TypeResult{Type: roll.Type, Rolls: []Die{}})
		}
		group := &result.Groups[gi]
		start := len(group.Rolls)
		for _, v := range values {
			group.Rolls = append(group.Rolls, Die{Value: max(v, floor)})
		}
		group.parts = append(group.parts, part{
			start:      start,
			end:        len(group.Rolls),
			bonus:      roll.Bonus + expr.Bonus,
			percentage: roll.LifeSteal.Percentage,
		})
	}

	result.recompute()
	return result, nil
}

// recompute derives every total from the faces and parts.
func (r *Result) recompute() {
	r.GrandTotal = r.CriticalBonus
	r.TotalHealed = 0
	for gi := range r.Groups {
		g := &r.Groups[gi]
		g.Bonus, g.Total, g.LifeSteal = 0, 0, nil
		for _, p := range g.parts {
			total := p.bonus
			for _, d := range g.Rolls[p.start:p.end] {
				total += d.Value
			}
			g.Bonus += p.bonus
			g.Total += total
			if p.percentage > 0 {
				healed := healing(total, p.percentage)
				if g.LifeSteal == nil {
					g.LifeSteal = &LifeStealResult{Percentage: p.percentage}
				}
				g.LifeSteal.Healed += healed
				r.TotalHealed += healed
			}
		}
		r.GrandTotal += g.Total
	}
}

// healing is floor(total * percentage / 100), never negative.
func healing(total, percentage int) int {
	if total <= 0 {
		return 0
	}
	return total * percentage / 100
}

func (r Result) clone() Result {
	out := r
	out.Groups = make([]TypeResult, len(r.Groups))
	for i, g := range r.Groups {
		g.Rolls = append([]Die{}, g.Rolls...)
		g.parts = append([]part{}, g.parts...)
		if g.LifeSteal != nil {
			ls := *g.LifeSteal
			g.LifeSteal = &ls
		}
		out.Groups[i] = g
	}
	return out
}

// RerollResult holds the faces rolled for one damage type's reroll dice.
type RerollResult struct {
	Type   string `json:"type"`
	Values []int  `json:"values"`
}

// RollRerolls rolls the attack's reroll dice, grouped by damage type in
// first-appearance order. Faces are clamped to each reroll's minimum.
func RollRerolls(rerolls []attack.RerollDie, roller *dice.Roller) ([]RerollResult, error) {
	var out []RerollResult
	index := make(map[string]int)
	for i, rr := range rerolls {
		expr, err := dice.Parse(rr.Dice)
		if err != nil {
			return nil, fmt.Errorf("reroll %d: %w", i, err)
		}
		values, err := rollFaces(roller, expr.Dice)
		if err != nil {
			return nil, fmt.Errorf("reroll %d: %w", i, err)
		}
		floor := rr.Min
		if floor <= 0 {
			floor = 1
		}
		gi, ok := index[rr.Type]
		if !ok {
			gi = len(out)
			index[rr.Type] = gi
			out = append(out, RerollResult{Type: rr.Type, Values: []int{}})
		}
		for _, v := range values {
			out[gi].Values = append(out[gi].Values, max(v, floor))
		}
	}
	return out, nil
}

// ReplaceDice swaps the lowest faces of each damage type for higher reroll
// faces of the same type. Each reroll face replaces at most one die, highest
// reroll against lowest die first, and only when it improves the die. The
// input result is not modified.
func ReplaceDice(result Result, rerolls []RerollResult) Result {
	out := result.clone()
	for _, rr := range rerolls {
		gi := -1
		for i := range out.Groups {
			if out.Groups[i].Type == rr.Type {
				gi = i
				break
			}
		}
		if gi < 0 {
			continue
		}
		rolls := out.Groups[gi].Rolls

		values := append([]int{}, rr.Values...)
		sort.Sort(sort.Reverse(sort.IntSlice(values)))
		for _, v := range values {
			lowest := -1
			for i, d := range rolls {
				if d.Replaced {
					continue
				}
				if lowest < 0 || d.Value < rolls[lowest].Value {
					lowest = i
				}
			}
			if lowest < 0 || v <= rolls[lowest].Value {
				break
			}
			rolls[lowest] = Die{Value: v, Replaced: true}
		}
	}
	out.recompute()
	return out
}
