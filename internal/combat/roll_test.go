package combat

import (
	"reflect"
	"testing"

	"github.com/louisbranch/dmscreen/internal/attack"
)

func TestRollIsDeterministicForSeed(t *testing.T) {
	def := attack.Definition{
		Name: "Mandoble",
		DamageRolls: []attack.DamageRoll{
			{Dice: "2d6+3", Type: "slashing"},
			{Dice: "1d4", Type: "necrotic", LifeSteal: attack.LifeSteal{Percentage: 50}},
		},
		RerollDice: []attack.RerollDie{{Dice: "1d6", Type: "slashing"}},
	}
	seed := int64(7)
	opts := RollOptions{Critical: true, Rule: RuleDefault, ApplyRerolls: true, Seed: &seed}

	first, err := Roll(def, opts)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	second, err := Roll(def, opts)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if first.Seed != 7 {
		t.Fatalf("expected seed 7, got %d", first.Seed)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical outcomes, got %+v and %+v", first, second)
	}
	if !first.Result.Critical {
		t.Fatal("expected critical result")
	}
	if len(first.Rerolls) != 1 {
		t.Fatalf("expected one reroll group, got %d", len(first.Rerolls))
	}
	slashing, ok := first.Result.Group("slashing")
	if !ok {
		t.Fatal("expected slashing group")
	}
	if len(slashing.Rolls) != 4 {
		t.Fatalf("expected doubled dice, got %d", len(slashing.Rolls))
	}
}

func TestRollWithoutRerollsKeepsResult(t *testing.T) {
	def := attack.Definition{
		Name:        "Daga",
		DamageRolls: []attack.DamageRoll{{Dice: "1d4+2", Type: "piercing"}},
		RerollDice:  []attack.RerollDie{{Dice: "1d4", Type: "piercing"}},
	}
	seed := int64(3)
	out, err := Roll(def, RollOptions{Seed: &seed})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Rerolls != nil {
		t.Fatalf("expected no rerolls, got %+v", out.Rerolls)
	}
	if out.Result.GrandTotal < 3 || out.Result.GrandTotal > 6 {
		t.Fatalf("expected total in 3..6, got %d", out.Result.GrandTotal)
	}
}

func TestRollRejectsInvalidDice(t *testing.T) {
	def := attack.Definition{Name: "Roto", DamageRolls: []attack.DamageRoll{{Dice: "banana", Type: "fire"}}}
	if _, err := Roll(def, RollOptions{}); err == nil {
		t.Fatal("expected error for invalid dice")
	}
}
