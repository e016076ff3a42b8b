package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodePlayerNotFound, "player not found")
	withMeta := WithMetadata(CodePlayerNotFound, "player p-1 not found", map[string]string{"PlayerID": "p-1"})

	if !stderrors.Is(withMeta, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(New(CodeAttackNotFound, "attack not found"), sentinel) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStorageSave, "save snapshot", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "save snapshot: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{name: "validation", err: New(CodeAttackEmptyName, "name"), kind: KindValidation},
		{name: "not found", err: New(CodeAttackPositionOutRange, "index"), kind: KindNotFound},
		{name: "precondition", err: New(CodeSessionInvalidTransition, "state"), kind: KindFailedPrecondition},
		{name: "storage", err: fmt.Errorf("writer: %w", Wrap(CodeStorageSave, "save", stderrors.New("boom"))), kind: KindStorage},
		{name: "plain", err: stderrors.New("plain"), kind: KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.kind {
				t.Fatalf("KindOf = %v, want %v", got, tc.kind)
			}
			if IsValidation(tc.err) != (tc.kind == KindValidation) {
				t.Fatalf("IsValidation mismatch for %v", tc.err)
			}
			if IsNotFound(tc.err) != (tc.kind == KindNotFound) {
				t.Fatalf("IsNotFound mismatch for %v", tc.err)
			}
			if IsStorage(tc.err) != (tc.kind == KindStorage) {
				t.Fatalf("IsStorage mismatch for %v", tc.err)
			}
			if IsFailedPrecondition(tc.err) != (tc.kind == KindFailedPrecondition) {
				t.Fatalf("IsFailedPrecondition mismatch for %v", tc.err)
			}
		})
	}
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %s", got)
	}
	if got := GetCode(nil); got != CodeUnknown {
		t.Fatalf("expected unknown code for nil, got %s", got)
	}
}
