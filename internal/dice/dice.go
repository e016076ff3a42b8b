// Package dice parses dice expressions and rolls them deterministically.
package dice

import (
	"math/rand"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
)

// MaxCount bounds how many dice a single spec may roll.
const MaxCount = 1000

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = apperrors.New(apperrors.CodeDiceMissing, "at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = apperrors.New(apperrors.CodeDiceInvalidSpec, "dice must have positive sides and count")

// DiceSpec describes a die to roll and how many times to roll it.
type DiceSpec struct {
	Sides int
	Count int
}

// Validate reports whether the spec can be rolled.
func (s DiceSpec) Validate() error {
	if s.Sides <= 0 || s.Count <= 0 || s.Count > MaxCount {
		return ErrInvalidDiceSpec
	}
	return nil
}

// DieRoll captures the results for a single dice spec.
type DieRoll struct {
	Sides   int
	Results []int
	Total   int
}

// RollRequest describes a request to roll one or more dice.
type RollRequest struct {
	Dice []DiceSpec
	Seed int64
}

// RollResult captures the results from rolling multiple dice.
type RollResult struct {
	Rolls []DieRoll
	Total int
}

// Roller draws die faces from a seeded source. A Roller is not safe for
// concurrent use.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll rolls spec and returns each face in roll order.
func (r *Roller) Roll(spec DiceSpec) ([]int, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	results := make([]int, spec.Count)
	for i := range results {
		results[i] = r.rollDie(spec.Sides)
	}
	return results, nil
}

func (r *Roller) rollDie(sides int) int {
	return r.rng.Intn(sides) + 1
}

// RollDice rolls dice based on the provided request.
//
// RollDice is deterministic with respect to Seed: the same Seed and the same
// Dice slice always produce the same RollResult. Specs are rolled in slice
// order and each DieRoll.Total is the sum of its Results.
func RollDice(request RollRequest) (RollResult, error) {
	if len(request.Dice) == 0 {
		return RollResult{}, ErrMissingDice
	}

	roller := NewRoller(request.Seed)
	rolls := make([]DieRoll, 0, len(request.Dice))
	total := 0

	for _, spec := range request.Dice {
		results, err := roller.Roll(spec)
		if err != nil {
			return RollResult{}, err
		}
		rollTotal := sum(results)
		rolls = append(rolls, DieRoll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return RollResult{
		Rolls: rolls,
		Total: total,
	}, nil
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
