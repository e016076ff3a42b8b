package dmscreen

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
)

func (r *runner) characters(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: characters list|add|edit|remove|damage|heal|temp|reset|log|clear-logs|export|import")
	}
	switch args[0] {
	case "list":
		return r.listCharacters(args[1:])
	case "add":
		fs := flag.NewFlagSet("characters add", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		regeneration := fs.Int("regen", 0, "hit points regained at the start of each turn")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		rest := fs.Args()
		if err := requireArgs(rest, 2, "characters add [-regen N] MAXHP NAME"); err != nil {
			return err
		}
		maxHP, err := parseNumber("max HP", rest[0])
		if err != nil {
			return err
		}
		name := strings.Join(rest[1:], " ")
		characterID, err := r.controller.CreateCharacter(character.Input{
			Name:         name,
			MaxHP:        maxHP,
			Regeneration: *regeneration,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyCharacterAdded, strings.TrimSpace(name)))
		fmt.Fprintln(r.out, characterID)
		return nil
	case "edit":
		return r.editCharacter(args[1:])
	case "remove":
		if err := requireArgs(args[1:], 1, "characters remove ID"); err != nil {
			return err
		}
		return r.controller.DeleteCharacter(args[1])
	case "damage":
		if err := requireArgs(args[1:], 2, "characters damage ID AMOUNT"); err != nil {
			return err
		}
		amount, err := parseNumber("amount", args[2])
		if err != nil {
			return err
		}
		result, err := r.controller.DamageCharacter(args[1], amount)
		if err != nil {
			return err
		}
		return r.printDamage(args[1], result)
	case "heal":
		if err := requireArgs(args[1:], 2, "characters heal ID AMOUNT"); err != nil {
			return err
		}
		amount, err := parseNumber("amount", args[2])
		if err != nil {
			return err
		}
		healed, err := r.controller.HealCharacter(args[1], amount)
		if err != nil {
			return err
		}
		c, err := r.controller.Character(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyHealed, c.Name, healed))
		return nil
	case "temp":
		if err := requireArgs(args[1:], 2, "characters temp ID AMOUNT"); err != nil {
			return err
		}
		amount, err := parseNumber("amount", args[2])
		if err != nil {
			return err
		}
		total, err := r.controller.AddTempHP(args[1], amount)
		if err != nil {
			return err
		}
		c, err := r.controller.Character(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTempHP, c.Name, total))
		return nil
	case "reset":
		fs := flag.NewFlagSet("characters reset", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		all := fs.Bool("all", false, "reset every character")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *all {
			return r.controller.ResetAllHP()
		}
		if err := requireArgs(fs.Args(), 1, "characters reset -all | ID"); err != nil {
			return err
		}
		return r.controller.ResetCharacterHP(fs.Arg(0))
	case "log":
		if err := requireArgs(args[1:], 1, "characters log ID"); err != nil {
			return err
		}
		c, err := r.controller.Character(args[1])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTURN\tACTION\tAMOUNT\tHP\tTEMP")
		for _, entry := range c.Logs {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d→%d\t%d→%d\n",
				entry.Timestamp.Local().Format(time.TimeOnly), entry.Turn, r.printer.LogAction(string(entry.Action)),
				entry.Amount, entry.HPBefore, entry.HPAfter, entry.TempHPBefore, entry.TempHPAfter)
		}
		return tw.Flush()
	case "clear-logs":
		return r.controller.ClearLogs()
	case "export":
		encounter, err := r.controller.ExportEncounter()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(encounter)
	case "import":
		var encounter character.Encounter
		if err := json.NewDecoder(r.in).Decode(&encounter); err != nil {
			return fmt.Errorf("read encounter: %w", err)
		}
		return r.controller.ImportEncounter(encounter)
	default:
		return fmt.Errorf("unknown characters command %q", args[0])
	}
}

func (r *runner) listCharacters(args []string) error {
	fs := flag.NewFlagSet("characters list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	sortBy := fs.String("sort", "", "order by hp or name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	characters, err := r.controller.Characters()
	if err != nil {
		return err
	}
	switch *sortBy {
	case "":
	case "hp":
		character.SortByHP(characters)
	case "name":
		character.SortByName(characters, r.printer.Locale())
	default:
		return fmt.Errorf("unknown sort %q", *sortBy)
	}
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHP\tTEMP\tREGEN")
	for _, c := range characters {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%d\n", c.ID, c.Name, c.CurrentHP, c.MaxHP, c.TempHP, c.Regeneration)
	}
	return tw.Flush()
}

func (r *runner) editCharacter(args []string) error {
	fs := flag.NewFlagSet("characters edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "new name")
	maxHP := fs.Int("max", 0, "new max HP")
	currentHP := fs.Int("hp", 0, "new current HP")
	regeneration := fs.Int("regen", 0, "new regeneration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs.Args(), 1, "characters edit [-name N] [-max N] [-hp N] [-regen N] ID"); err != nil {
		return err
	}
	var edit character.Edit
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			edit.Name = name
		case "max":
			edit.MaxHP = maxHP
		case "hp":
			edit.CurrentHP = currentHP
		case "regen":
			edit.Regeneration = regeneration
		}
	})
	return r.controller.EditCharacter(fs.Arg(0), edit)
}

func (r *runner) printDamage(characterID string, result character.DamageResult) error {
	c, err := r.controller.Character(characterID)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyDamaged, c.Name, result.Dealt, result.AbsorbedByTemp, result.RemainingHP, result.RemainingTempHP))
	return nil
}

func (r *runner) turns(args []string) error {
	if len(args) == 0 {
		turn, active, err := r.controller.Turn()
		if err != nil {
			return err
		}
		switch {
		case turn == 0:
			fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyNoTurn))
		case active:
			fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTurnStatus, turn))
		default:
			fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTurnIdle, turn))
		}
		return nil
	}
	switch args[0] {
	case "start":
		turn, err := r.controller.StartTurn()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTurnStarted, turn))
		return nil
	case "end":
		if err := r.controller.EndTurn(); err != nil {
			return err
		}
		turn, _, err := r.controller.Turn()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTurnEnded, turn))
		return nil
	case "reset":
		if err := r.controller.ResetTurns(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTurnsReset))
		return nil
	default:
		return fmt.Errorf("unknown turns command %q", args[0])
	}
}

func (r *runner) passive(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: passive list|add|update|remove|apply")
	}
	switch args[0] {
	case "list":
		damages, err := r.controller.PassiveDamages()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDICE\tTYPE\tDESCRIPTION")
		for _, d := range damages {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Dice, r.printer.DamageType(d.Type), d.Description)
		}
		return tw.Flush()
	case "add":
		in, rest, err := parsePassiveInput("passive add", args[1:])
		if err != nil {
			return err
		}
		if err := requireArgs(rest, 1, "passive add -dice D [-type T] [-desc TEXT] NAME"); err != nil {
			return err
		}
		in.Name = strings.Join(rest, " ")
		damageID, err := r.controller.AddPassiveDamage(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, damageID)
		return nil
	case "update":
		in, rest, err := parsePassiveInput("passive update", args[1:])
		if err != nil {
			return err
		}
		if err := requireArgs(rest, 2, "passive update -dice D [-type T] [-desc TEXT] ID NAME"); err != nil {
			return err
		}
		in.Name = strings.Join(rest[1:], " ")
		return r.controller.UpdatePassiveDamage(rest[0], in)
	case "remove":
		if err := requireArgs(args[1:], 1, "passive remove ID"); err != nil {
			return err
		}
		return r.controller.DeletePassiveDamage(args[1])
	case "apply":
		fs := flag.NewFlagSet("passive apply", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		seed := fs.Int64("seed", 0, "seed for a reproducible roll (0 = random)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 2, "passive apply [-seed N] PASSIVE CHARACTER"); err != nil {
			return err
		}
		var requested *int64
		if *seed != 0 {
			requested = seed
		}
		hit, err := r.controller.ApplyPassiveDamage(fs.Arg(0), fs.Arg(1), requested)
		if err != nil {
			return err
		}
		c, err := r.controller.Character(fs.Arg(1))
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyPassiveApplied, hit.Roll.Name, hit.Roll.Total, r.printer.DamageType(hit.Roll.Type), c.Name))
		if err := r.printDamage(fs.Arg(1), hit.Damage); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "seed %d\n", hit.Roll.Seed)
		return nil
	default:
		return fmt.Errorf("unknown passive command %q", args[0])
	}
}

func parsePassiveInput(name string, args []string) (passive.Input, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dice := fs.String("dice", "", "damage dice, such as 1d6+2")
	damageType := fs.String("type", "", "damage type id")
	description := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return passive.Input{}, nil, err
	}
	return passive.Input{Dice: *dice, Type: *damageType, Description: *description}, fs.Args(), nil
}

func parseNumber(label, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", label, value)
	}
	return n, nil
}
