package dmscreen

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/dmscreen/internal/character"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/session"
	"github.com/louisbranch/dmscreen/internal/storage/driver"
	"github.com/louisbranch/dmscreen/internal/storage/memory"
)

func noEnv(string) (string, bool) { return "", false }

func newTestRunner(t *testing.T, input string) (*runner, *bytes.Buffer) {
	t.Helper()
	controller, err := session.NewController(memory.New(), session.Options{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = controller.Close(context.Background())
	})
	out := &bytes.Buffer{}
	return &runner{
		controller: controller,
		printer:    notice.New("en-US"),
		in:         strings.NewReader(input),
		out:        out,
	}, out
}

func lastLine(out *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	return lines[len(lines)-1]
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("dmscreen", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"players", "list"}, noEnv)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Storage.Driver != driver.SQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Locale != "es-ES" {
		t.Fatalf("expected es-ES locale, got %q", cfg.Locale)
	}
	if strings.Join(cfg.Args, " ") != "players list" {
		t.Fatalf("expected command args, got %v", cfg.Args)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("dmscreen", flag.ContinueOnError)
	lookup := func(key string) (string, bool) {
		switch key {
		case "DMSCREEN_STORAGE":
			return "bbolt", true
		case "DMSCREEN_BBOLT_PATH":
			return "env.bolt", true
		case "DMSCREEN_LOCALE":
			return "en-US", true
		default:
			return "", false
		}
	}
	cfg, err := ParseConfig(fs, []string{"-bbolt-path", "flag.bolt", "xp", "top"}, lookup)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Storage.Driver != driver.Bbolt {
		t.Fatalf("expected env driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.BboltPath != "flag.bolt" {
		t.Fatalf("expected flag path, got %q", cfg.Storage.BboltPath)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected env locale, got %q", cfg.Locale)
	}
}

func TestParseConfigRequiresCommand(t *testing.T) {
	fs := flag.NewFlagSet("dmscreen", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil, noEnv); err == nil {
		t.Fatal("expected error without command")
	}
}

func TestRunnerPlayerAndXPCommands(t *testing.T) {
	r, out := newTestRunner(t, "")

	if err := r.run([]string{"players", "add", "Aragorn"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	aragorn := lastLine(out)
	if err := r.run([]string{"players", "add", "Legolas"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	legolas := lastLine(out)

	if err := r.run([]string{"xp", "grant", aragorn, "100"}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if got := lastLine(out); got != "100 XP granted to Aragorn." {
		t.Fatalf("unexpected grant notice %q", got)
	}
	if err := r.run([]string{"xp", "grant", legolas, "75"}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := r.run([]string{"xp", "grant", aragorn, "25"}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := r.run([]string{"xp", "revoke", legolas, "5"}); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	totals, _ := r.controller.Totals()
	if totals[aragorn] != 125 || totals[legolas] != 70 {
		t.Fatalf("expected 125/70, got %v", totals)
	}

	out.Reset()
	if err := r.run([]string{"players", "list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Aragorn") || !strings.Contains(out.String(), "125") {
		t.Fatalf("expected roster in list output, got %q", out.String())
	}

	out.Reset()
	if err := r.run([]string{"xp", "top", "2"}); err != nil {
		t.Fatalf("top: %v", err)
	}
	if got := strings.Fields(out.String()); len(got) != 2 || got[0] != "25" || got[1] != "75" {
		t.Fatalf("expected top amounts 25 75, got %v", got)
	}
}

func TestRunnerLocalizesDomainErrors(t *testing.T) {
	r, _ := newTestRunner(t, "")

	err := r.run([]string{"xp", "grant", "missing", "10"})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Player missing was not found." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = r.run([]string{"xp", "grant-all", "ten"})
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunnerSessionResetPrompt(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		args   []string
		wantXP int
	}{
		{name: "confirmed by prompt", input: "y\n", args: []string{"session", "reset"}, wantXP: 0},
		{name: "declined by prompt", input: "n\n", args: []string{"session", "reset"}, wantXP: 40},
		{name: "empty input cancels", input: "", args: []string{"session", "reset"}, wantXP: 40},
		{name: "yes flag", input: "", args: []string{"session", "reset", "-yes"}, wantXP: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, out := newTestRunner(t, tc.input)
			playerID, _ := r.controller.AddPlayer("Gimli")
			if err := r.controller.GrantXP(playerID, 40); err != nil {
				t.Fatalf("grant: %v", err)
			}
			if err := r.run(tc.args); err != nil {
				t.Fatalf("reset: %v", err)
			}
			p, _ := r.controller.Player(playerID)
			if p.XP != tc.wantXP {
				t.Fatalf("expected %d XP, got %d", tc.wantXP, p.XP)
			}
			if r.controller.State() != session.StateReady {
				t.Fatalf("expected ready state, got %s", r.controller.State())
			}
			if tc.wantXP == 0 && !strings.HasSuffix(lastLine(out), "New session started!") {
				t.Fatalf("expected reset notice, got %q", lastLine(out))
			}
		})
	}
}

func TestRunnerAttackCommands(t *testing.T) {
	r, out := newTestRunner(t, "")

	if err := r.run([]string{"attacks", "create", "-damage", "2d6+3:slashing", "-damage", "1d4:necrotic:1:50", "-reroll", "1d6:slashing", "Test", "Attack"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	attackID := lastLine(out)
	if err := r.run([]string{"attacks", "duplicate", attackID}); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	copyID := lastLine(out)
	if err := r.run([]string{"attacks", "move", copyID, "0"}); err != nil {
		t.Fatalf("move: %v", err)
	}
	attacks, _ := r.controller.Attacks()
	if len(attacks) != 2 || attacks[0].Name != "Test Attack (Copia)" {
		t.Fatalf("unexpected attacks %+v", attacks)
	}
	if attacks[1].DamageRolls[1].LifeSteal.Percentage != 50 {
		t.Fatalf("expected life steal 50, got %+v", attacks[1].DamageRolls[1])
	}

	out.Reset()
	if err := r.run([]string{"attacks", "roll", "-seed", "9", attackID}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	first := out.String()
	out.Reset()
	if err := r.run([]string{"attacks", "roll", "-seed", "9", attackID}); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.String() != first {
		t.Fatalf("expected identical seeded rolls, got %q and %q", first, out.String())
	}
	if !strings.Contains(first, "Total damage:") || !strings.Contains(first, "seed 9") {
		t.Fatalf("unexpected roll output %q", first)
	}

	if err := r.run([]string{"attacks", "move", copyID, "7"}); !apperrors.IsNotFound(err) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := r.run([]string{"attacks", "remove", copyID}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.run([]string{"attacks", "create", "-damage", "2d6"}); err == nil {
		t.Fatal("expected malformed damage flag to fail")
	}
}

func TestRunnerCounterCommands(t *testing.T) {
	r, out := newTestRunner(t, "")
	playerID, _ := r.controller.AddPlayer("Frodo")

	if err := r.run([]string{"counters", "add", "-value", "3", "-step", "2", playerID, "Inspiración"}); err != nil {
		t.Fatalf("add counter: %v", err)
	}
	counterID := lastLine(out)
	if err := r.run([]string{"counters", "adjust", playerID, counterID, "-2"}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got := lastLine(out); got != "-1" {
		t.Fatalf("expected -1, got %q", got)
	}
	if err := r.run([]string{"counters", "remove", playerID, counterID}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out.Reset()
	if err := r.run([]string{"counters", "list", playerID}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out.String(), "Inspiración") {
		t.Fatalf("expected counter removed, got %q", out.String())
	}
}

func TestRunPersistsAcrossInvocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.db")
	cfg := Config{
		Storage: driver.Config{Driver: driver.SQLite, SQLitePath: path},
		Locale:  "en-US",
	}

	out := &bytes.Buffer{}
	cfg.Args = []string{"players", "add", "Sam"}
	if err := Run(context.Background(), cfg, nil, out, nil); err != nil {
		t.Fatalf("run add: %v", err)
	}

	out.Reset()
	cfg.Args = []string{"players", "list"}
	if err := Run(context.Background(), cfg, nil, out, nil); err != nil {
		t.Fatalf("run list: %v", err)
	}
	if !strings.Contains(out.String(), "Sam") {
		t.Fatalf("expected persisted player, got %q", out.String())
	}
}

func TestRunnerEncounterCommands(t *testing.T) {
	r, out := newTestRunner(t, "")

	if err := r.run([]string{"characters", "add", "-regen", "5", "30", "Trol"}); err != nil {
		t.Fatalf("add troll: %v", err)
	}
	trollID := lastLine(out)
	if err := r.run([]string{"characters", "add", "7", "Goblin"}); err != nil {
		t.Fatalf("add goblin: %v", err)
	}

	if err := r.run([]string{"characters", "temp", trollID, "4"}); err != nil {
		t.Fatalf("temp: %v", err)
	}
	if err := r.run([]string{"characters", "damage", trollID, "10"}); err != nil {
		t.Fatalf("damage: %v", err)
	}
	if got := lastLine(out); got != "Trol takes 10 damage (4 absorbed), 24 HP and 0 temporary HP left." {
		t.Fatalf("unexpected damage notice %q", got)
	}
	if err := r.run([]string{"turns", "start"}); err != nil {
		t.Fatalf("start turn: %v", err)
	}
	if got := lastLine(out); got != "Turn 1 started." {
		t.Fatalf("unexpected turn notice %q", got)
	}
	troll, _ := r.controller.Character(trollID)
	if troll.CurrentHP != 29 {
		t.Fatalf("expected regeneration to 29 HP, got %d", troll.CurrentHP)
	}
	if err := r.run([]string{"turns", "end"}); err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if err := r.run([]string{"turns", "end"}); apperrors.GetCode(err) != apperrors.CodeTurnNotActive {
		t.Fatalf("expected turn not active, got %v", err)
	}

	out.Reset()
	if err := r.run([]string{"characters", "list", "-sort", "hp"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "Goblin") || !strings.Contains(lines[2], "29/30") {
		t.Fatalf("expected goblin first by HP, got %q", out.String())
	}

	out.Reset()
	if err := r.run([]string{"characters", "log", trollID}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out.String(), "Regenerated") || !strings.Contains(out.String(), "Turn ended") {
		t.Fatalf("expected localized log actions, got %q", out.String())
	}

	if err := r.run([]string{"characters", "edit", "-max", "20", trollID}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	troll, _ = r.controller.Character(trollID)
	if troll.MaxHP != 20 || troll.CurrentHP != 20 || troll.Regeneration != 5 {
		t.Fatalf("expected only max HP edited and current capped, got %+v", troll)
	}
	if err := r.run([]string{"characters", "damage", trollID, "-3"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunnerEncounterExportImport(t *testing.T) {
	source, out := newTestRunner(t, "")
	if _, err := source.controller.CreateCharacter(character.Input{Name: "Orco", MaxHP: 15}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := source.run([]string{"characters", "export"}); err != nil {
		t.Fatalf("export: %v", err)
	}

	target, _ := newTestRunner(t, out.String())
	if err := target.run([]string{"characters", "import"}); err != nil {
		t.Fatalf("import: %v", err)
	}
	characters, _ := target.controller.Characters()
	if len(characters) != 1 || characters[0].Name != "Orco" || characters[0].CurrentHP != 15 {
		t.Fatalf("expected imported character, got %+v", characters)
	}

	bad, _ := newTestRunner(t, `{"characters":[{"id":"x","name":"","maxHp":3,"currentHp":3}],"currentTurn":0}`)
	if err := bad.run([]string{"characters", "import"}); apperrors.GetCode(err) != apperrors.CodeEncounterInvalidImport {
		t.Fatalf("expected invalid import, got %v", err)
	}
}

func TestRunnerPassiveCommands(t *testing.T) {
	r, out := newTestRunner(t, "")
	targetID, _ := r.controller.CreateCharacter(character.Input{Name: "Goblin", MaxHP: 10})

	if err := r.run([]string{"passive", "add", "-dice", "2d1+1", "-type", "fire", "Aura", "de", "fuego"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	auraID := lastLine(out)
	if err := r.run([]string{"passive", "add", "-dice", "muchos", "Roto"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected invalid dice, got %v", err)
	}

	out.Reset()
	if err := r.run([]string{"passive", "apply", "-seed", "4", auraID, targetID}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(out.String(), "Aura de fuego deals 3 Fire damage to Goblin.") || !strings.Contains(out.String(), "seed 4") {
		t.Fatalf("unexpected apply output %q", out.String())
	}
	goblin, _ := r.controller.Character(targetID)
	if goblin.CurrentHP != 7 {
		t.Fatalf("expected 7 HP, got %d", goblin.CurrentHP)
	}

	if err := r.run([]string{"passive", "update", "-dice", "1d4", "-type", "cold", auraID, "Escarcha"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	out.Reset()
	if err := r.run([]string{"passive", "list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Escarcha") || !strings.Contains(out.String(), "Cold") {
		t.Fatalf("expected updated passive damage, got %q", out.String())
	}
	if err := r.run([]string{"passive", "remove", auraID}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.run([]string{"passive", "remove", auraID}); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunnerSessionOverwrite(t *testing.T) {
	store := memory.New()
	store.FailLoads(errors.New("disk busy"))
	controller, err := session.NewController(store, session.Options{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = controller.Close(context.Background())
	})
	out := &bytes.Buffer{}
	r := &runner{controller: controller, printer: notice.New("en-US"), out: out}

	if err := r.run([]string{"session", "overwrite"}); err == nil {
		t.Fatal("expected overwrite without -yes to fail")
	}
	if controller.Persisting() {
		t.Fatal("expected persistence off before overwrite")
	}
	if err := r.run([]string{"session", "overwrite", "-yes"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if !controller.Persisting() {
		t.Fatal("expected persistence on after overwrite")
	}
	if got := lastLine(out); got != "The saved session now holds the current state." {
		t.Fatalf("unexpected overwrite notice %q", got)
	}
}
