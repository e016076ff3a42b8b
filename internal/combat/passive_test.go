package combat

import (
	"reflect"
	"testing"

	"github.com/louisbranch/dmscreen/internal/passive"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
)

func TestRollPassiveIsDeterministicForSeed(t *testing.T) {
	aura := passive.Damage{ID: "p-1", Name: "Aura", Dice: "3d1+2", Type: "fire"}
	seed := int64(11)

	first, err := RollPassive(aura, &seed)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	second, err := RollPassive(aura, &seed)
	if err != nil {
		t.Fatalf("roll again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical rolls, got %+v and %+v", first, second)
	}
	if first.Total != 5 || len(first.Faces) != 3 || first.Seed != 11 || first.Type != "fire" {
		t.Fatalf("unexpected roll: %+v", first)
	}
}

func TestRollPassiveClampsNegativeTotals(t *testing.T) {
	got, err := RollPassive(passive.Damage{Name: "Brisa", Dice: "1d1-4"}, nil)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if got.Total != 0 {
		t.Fatalf("expected total clamped to 0, got %d", got.Total)
	}
}

func TestRollPassiveRejectsBadDice(t *testing.T) {
	if _, err := RollPassive(passive.Damage{Name: "Roto", Dice: "xd"}, nil); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
