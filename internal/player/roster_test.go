package player

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
)

func newTestRoster(t *testing.T, names ...string) (*Roster, []string) {
	t.Helper()
	roster := NewRoster()
	roster.now = func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) }
	ids := make([]string, 0, len(names))
	for _, name := range names {
		playerID, err := roster.Add(name)
		if err != nil {
			t.Fatalf("add %q: %v", name, err)
		}
		ids = append(ids, playerID)
	}
	return roster, ids
}

func TestAddCreatesPlayerWithDefaults(t *testing.T) {
	roster, ids := newTestRoster(t, "  Aragorn ")
	p, err := roster.Get(ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Aragorn" || p.XP != 0 {
		t.Fatalf("unexpected player: %+v", p)
	}
	if len(p.Counters) != len(DefaultCounterNames) {
		t.Fatalf("expected %d default counters, got %d", len(DefaultCounterNames), len(p.Counters))
	}
	if p.Counters[0].Name != "Acrobacias" || p.Counters[0].Step != 1 || !p.Counters[0].Visible {
		t.Fatalf("unexpected first counter: %+v", p.Counters[0])
	}
}

func TestAddRejectsEmptyName(t *testing.T) {
	roster := NewRoster()
	if _, err := roster.Add(" \t"); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if roster.Len() != 0 {
		t.Fatalf("expected empty roster, got %d", roster.Len())
	}
}

func TestGrantXPIsAdditive(t *testing.T) {
	roster, ids := newTestRoster(t, "Gimli")
	for _, amount := range []int{30, 45} {
		if err := roster.GrantXP(ids[0], amount); err != nil {
			t.Fatalf("grant %d: %v", amount, err)
		}
	}
	p, _ := roster.Get(ids[0])
	if p.XP != 75 {
		t.Fatalf("expected 75 XP, got %d", p.XP)
	}
	if len(p.XPHistory) != 2 || p.XPHistory[1].Amount != 45 {
		t.Fatalf("unexpected history: %+v", p.XPHistory)
	}
}

func TestGrantXPValidation(t *testing.T) {
	roster, ids := newTestRoster(t, "Gimli")
	calls := 0
	roster.OnChange(func() { calls++ })

	if err := roster.GrantXP("missing", 10); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := roster.GrantXP(ids[0], -1); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := roster.GrantXP(ids[0], 0); err != nil {
		t.Fatalf("expected zero grant to be accepted, got %v", err)
	}
	p, _ := roster.Get(ids[0])
	if p.XP != 0 || len(p.XPHistory) != 0 || calls != 0 {
		t.Fatalf("expected no mutation, got %+v with %d hook calls", p, calls)
	}
}

func TestGrantXPToAll(t *testing.T) {
	roster, ids := newTestRoster(t, "A", "B", "C")
	_ = roster.GrantXP(ids[0], 10)
	_ = roster.GrantXP(ids[2], 5)

	if err := roster.GrantXPToAll(7); err != nil {
		t.Fatalf("grant all: %v", err)
	}
	want := map[string]int{ids[0]: 17, ids[1]: 7, ids[2]: 12}
	if got := roster.Totals(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := roster.GrantXPToAll(-3); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := roster.Totals(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected totals unchanged after rejected grant, got %v", got)
	}
}

func TestGrantXPRejectsOverflow(t *testing.T) {
	tests := []struct {
		name  string
		start int
		grant int
		all   bool
	}{
		{name: "single grant past max", start: math.MaxInt, grant: 1},
		{name: "single grant of max on top of one", start: 1, grant: math.MaxInt},
		{name: "broadcast grant past max", start: math.MaxInt - 5, grant: 6, all: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roster, ids := newTestRoster(t, "Aragorn", "Legolas")
			if err := roster.GrantXP(ids[0], tc.start); err != nil {
				t.Fatalf("seed grant: %v", err)
			}
			before := roster.Totals()

			var err error
			if tc.all {
				err = roster.GrantXPToAll(tc.grant)
			} else {
				err = roster.GrantXP(ids[0], tc.grant)
			}
			if apperrors.GetCode(err) != apperrors.CodePlayerInvalidXPAmount {
				t.Fatalf("expected invalid amount error, got %v", err)
			}
			if got := roster.Totals(); !reflect.DeepEqual(got, before) {
				t.Fatalf("expected totals %v unchanged, got %v", before, got)
			}
			for _, total := range roster.Totals() {
				if total < 0 {
					t.Fatalf("expected non-negative totals, got %v", roster.Totals())
				}
			}
		})
	}
}

func TestRevokeXP(t *testing.T) {
	roster, ids := newTestRoster(t, "Boromir")
	_ = roster.GrantXP(ids[0], 20)

	if err := roster.RevokeXP(ids[0], 5); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := roster.RevokeXP(ids[0], 16); apperrors.GetCode(err) != apperrors.CodePlayerXPBelowZero {
		t.Fatalf("expected below zero error, got %v", err)
	}
	p, _ := roster.Get(ids[0])
	if p.XP != 15 {
		t.Fatalf("expected 15 XP, got %d", p.XP)
	}
	if last := p.XPHistory[len(p.XPHistory)-1]; last.Amount != -5 {
		t.Fatalf("expected negative history entry, got %+v", last)
	}
}

func TestAragornLegolasSessionScenario(t *testing.T) {
	roster, ids := newTestRoster(t, "Aragorn", "Legolas")
	if err := roster.GrantXP(ids[0], 100); err != nil {
		t.Fatalf("grant Aragorn: %v", err)
	}
	if err := roster.GrantXP(ids[1], 50); err != nil {
		t.Fatalf("grant Legolas: %v", err)
	}
	if err := roster.GrantXPToAll(25); err != nil {
		t.Fatalf("grant all: %v", err)
	}
	if got := roster.Totals(); got[ids[0]] != 125 || got[ids[1]] != 75 {
		t.Fatalf("expected 125/75, got %v", got)
	}

	roster.ResetAll()
	list := roster.List()
	if len(list) != 2 || list[0].Name != "Aragorn" || list[1].Name != "Legolas" {
		t.Fatalf("expected players kept, got %+v", list)
	}
	for _, p := range list {
		if p.XP != 0 || len(p.XPHistory) != 0 {
			t.Fatalf("expected zeroed ledger, got %+v", p)
		}
		if len(p.Counters) != len(DefaultCounterNames) {
			t.Fatalf("expected counters kept, got %d", len(p.Counters))
		}
	}
}

func TestRenameNotesDelete(t *testing.T) {
	roster, ids := newTestRoster(t, "Frodo", "Sam")

	if err := roster.Rename(ids[0], "Mr. Underhill"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := roster.Rename(ids[0], ""); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := roster.SetNotes(ids[1], "carries the pans"); err != nil {
		t.Fatalf("notes: %v", err)
	}
	if err := roster.Delete(ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := roster.Delete(ids[0]); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	list := roster.List()
	if len(list) != 1 || list[0].Notes != "carries the pans" {
		t.Fatalf("unexpected roster: %+v", list)
	}
}

func TestMostUsedXPAmounts(t *testing.T) {
	roster, ids := newTestRoster(t, "A", "B")
	for _, amount := range []int{50, 25, 50, 100, 25, 10} {
		_ = roster.GrantXP(ids[0], amount)
	}
	_ = roster.GrantXP(ids[1], 100)
	_ = roster.RevokeXP(ids[1], 10)

	got, err := roster.MostUsedXPAmounts(3)
	if err != nil {
		t.Fatalf("most used: %v", err)
	}
	if want := []int{25, 50, 100}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, err := roster.MostUsedXPAmounts(0); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "25", want: 25},
		{in: " 0 ", want: 0},
		{in: "-4", wantErr: true},
		{in: "2.5", wantErr: true},
		{in: "diez", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if !apperrors.IsValidation(err) {
				t.Fatalf("ParseAmount(%q): expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestCounters(t *testing.T) {
	roster, ids := newTestRoster(t, "Pippin")

	counterID, err := roster.AddCounter(ids[0], CounterInput{Name: "Inspiración", Step: 2})
	if err != nil {
		t.Fatalf("add counter: %v", err)
	}
	if value, err := roster.AdjustCounter(ids[0], counterID, 3); err != nil || value != 6 {
		t.Fatalf("expected value 6, got %d (%v)", value, err)
	}
	if value, _ := roster.AdjustCounter(ids[0], counterID, -1); value != 4 {
		t.Fatalf("expected value 4, got %d", value)
	}
	if err := roster.UpdateCounter(ids[0], counterID, CounterInput{Name: "Suerte", Value: 1, Hidden: true}); err != nil {
		t.Fatalf("update counter: %v", err)
	}
	p, _ := roster.Get(ids[0])
	last := p.Counters[len(p.Counters)-1]
	if last.Name != "Suerte" || last.Value != 1 || last.Step != 1 || last.Visible {
		t.Fatalf("unexpected counter: %+v", last)
	}
	if _, err := roster.AddCounter(ids[0], CounterInput{Name: ""}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := roster.DeleteCounter(ids[0], counterID); err != nil {
		t.Fatalf("delete counter: %v", err)
	}
	if err := roster.DeleteCounter(ids[0], counterID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlayerJSONRoundTrip(t *testing.T) {
	roster, ids := newTestRoster(t, "Éowyn")
	_ = roster.GrantXP(ids[0], 40)
	want, _ := roster.Get(ids[0])

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Player
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPlayerUnmarshalMigratesLegacyRecord(t *testing.T) {
	var got Player
	legacy := `{"id":"p1","name":"Merry","sessionXp":30,"xpHistory":[{"amount":30,"timestamp":"2024-05-01T10:00:00.000Z"}],"notes":""}`
	if err := json.Unmarshal([]byte(legacy), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.XP != 30 {
		t.Fatalf("expected legacy sessionXp to load, got %d", got.XP)
	}
	if len(got.Counters) != len(DefaultCounterNames) {
		t.Fatalf("expected default counters, got %d", len(got.Counters))
	}
}

func TestPlayerWithoutCountersKeepsNoCounters(t *testing.T) {
	data, err := json.Marshal(Player{ID: "p1", Name: "Pippin", XP: 5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if string(raw["counters"]) != "[]" || string(raw["xpHistory"]) != "[]" {
		t.Fatalf("expected empty lists, got counters=%s history=%s", raw["counters"], raw["xpHistory"])
	}

	var got Player
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Counters == nil || len(got.Counters) != 0 {
		t.Fatalf("expected no counters, got %+v", got.Counters)
	}

	var nullCounters Player
	if err := json.Unmarshal([]byte(`{"id":"p2","name":"Sam","xp":0,"counters":null}`), &nullCounters); err != nil {
		t.Fatalf("unmarshal null counters: %v", err)
	}
	if nullCounters.Counters == nil || len(nullCounters.Counters) != 0 {
		t.Fatalf("expected null counters to read as empty, got %d", len(nullCounters.Counters))
	}
}
