package combat

import (
	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/dice"
	"github.com/louisbranch/dmscreen/internal/random"
)

// RollOptions selects how an attack is rolled. A nil Seed draws a fresh one.
type RollOptions struct {
	Critical       bool
	Rule           CriticalRule
	CharacterLevel int
	// ApplyRerolls rolls the attack's reroll dice and swaps them into the result.
	ApplyRerolls bool
	Seed         *int64
}

// Outcome is a rolled attack together with the seed that produced it.
type Outcome struct {
	Seed    int64          `json:"seed"`
	Result  Result         `json:"result"`
	Rerolls []RerollResult `json:"rerolls,omitempty"`
}

// Roll resolves def once. The same options and seed always give the same
// outcome.
func Roll(def attack.Definition, opts RollOptions) (Outcome, error) {
	seed, err := random.ResolveSeed(opts.Seed)
	if err != nil {
		return Outcome{}, err
	}
	roller := dice.NewRoller(seed)

	var result Result
	if opts.Critical {
		result, err = ExecuteCritical(def, CriticalConfig{Rule: opts.Rule, CharacterLevel: opts.CharacterLevel}, roller)
	} else {
		result, err = Execute(def, roller)
	}
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Seed: seed, Result: result}
	if opts.ApplyRerolls && len(def.RerollDice) > 0 {
		rerolls, err := RollRerolls(def.RerollDice, roller)
		if err != nil {
			return Outcome{}, err
		}
		out.Rerolls = rerolls
		out.Result = ReplaceDice(result, rerolls)
	}
	return out, nil
}
