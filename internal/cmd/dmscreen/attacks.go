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

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/combat"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
)

// damageFlags collects repeated -damage DICE:TYPE[:MIN[:LIFESTEAL]] values.
type damageFlags []attack.DamageRoll

func (f *damageFlags) String() string {
	return fmt.Sprint(len(*f))
}

func (f *damageFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return fmt.Errorf("damage %q must be DICE:TYPE[:MIN[:LIFESTEAL]]", value)
	}
	roll := attack.DamageRoll{Dice: parts[0], Type: strings.TrimSpace(parts[1])}
	var err error
	if len(parts) > 2 {
		if roll.Min, err = strconv.Atoi(parts[2]); err != nil {
			return fmt.Errorf("damage %q: invalid min: %w", value, err)
		}
	}
	if len(parts) > 3 {
		if roll.LifeSteal.Percentage, err = strconv.Atoi(parts[3]); err != nil {
			return fmt.Errorf("damage %q: invalid life steal: %w", value, err)
		}
	}
	*f = append(*f, roll)
	return nil
}

// rerollFlags collects repeated -reroll DICE:TYPE[:MIN] values.
type rerollFlags []attack.RerollDie

func (f *rerollFlags) String() string {
	return fmt.Sprint(len(*f))
}

func (f *rerollFlags) Set(value string) error {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("reroll %q must be DICE:TYPE[:MIN]", value)
	}
	die := attack.RerollDie{Dice: parts[0], Type: strings.TrimSpace(parts[1])}
	if len(parts) > 2 {
		minimum, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("reroll %q: invalid min: %w", value, err)
		}
		die.Min = minimum
	}
	*f = append(*f, die)
	return nil
}

func (r *runner) attacks(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: attacks list|create|duplicate|move|remove|roll")
	}
	switch args[0] {
	case "list":
		attacks, err := r.controller.Attacks()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tID\tNAME\tDAMAGE")
		for i, def := range attacks {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, def.ID, def.Name, r.describeDamage(def.DamageRolls))
		}
		return tw.Flush()
	case "create":
		fs := flag.NewFlagSet("attacks create", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		var damage damageFlags
		var rerolls rerollFlags
		fs.Var(&damage, "damage", "damage roll DICE:TYPE[:MIN[:LIFESTEAL]], repeatable")
		fs.Var(&rerolls, "reroll", "reroll die DICE:TYPE[:MIN], repeatable")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := requireArgs(fs.Args(), 1, "attacks create [-damage ...] [-reroll ...] NAME"); err != nil {
			return err
		}
		attackID, err := r.controller.CreateAttack(attack.Input{
			Name:        strings.Join(fs.Args(), " "),
			DamageRolls: damage,
			RerollDice:  rerolls,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, attackID)
		return nil
	case "duplicate":
		if err := requireArgs(args[1:], 1, "attacks duplicate ID"); err != nil {
			return err
		}
		copyID, err := r.controller.DuplicateAttack(args[1])
		if err != nil {
			return err
		}
		def, err := r.controller.Attack(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyAttackDuplicated, def.Name))
		fmt.Fprintln(r.out, copyID)
		return nil
	case "move":
		if err := requireArgs(args[1:], 2, "attacks move ID INDEX"); err != nil {
			return err
		}
		target, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[2])
		}
		return r.controller.MoveAttack(args[1], target)
	case "remove":
		if err := requireArgs(args[1:], 1, "attacks remove ID"); err != nil {
			return err
		}
		return r.controller.DeleteAttack(args[1])
	case "roll":
		return r.rollAttack(args[1:])
	default:
		return fmt.Errorf("unknown attacks command %q", args[0])
	}
}

func (r *runner) rollAttack(args []string) error {
	fs := flag.NewFlagSet("attacks roll", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	critical := fs.Bool("crit", false, "roll as a critical hit")
	rule := fs.String("rule", string(combat.RuleDefault), "critical rule: default, maximized or massive")
	level := fs.Int("level", 1, "character level for massive criticals")
	reroll := fs.Bool("reroll", false, "roll reroll dice and replace the lowest faces")
	seed := fs.Int64("seed", 0, "seed for a reproducible roll (0 = random)")
	asJSON := fs.Bool("json", false, "print the outcome as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs.Args(), 1, "attacks roll [-crit] [-rule R] [-level N] [-reroll] [-seed N] [-json] ID"); err != nil {
		return err
	}
	parsedRule, err := combat.ParseCriticalRule(*rule)
	if err != nil {
		return err
	}
	def, err := r.controller.Attack(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := combat.RollOptions{
		Critical:       *critical,
		Rule:           parsedRule,
		CharacterLevel: *level,
		ApplyRerolls:   *reroll,
	}
	if *seed != 0 {
		opts.Seed = seed
	}
	outcome, err := combat.Roll(def, opts)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	fmt.Fprintln(r.out, outcome.Result.Name)
	for _, group := range outcome.Result.Groups {
		faces := make([]string, len(group.Rolls))
		for i, die := range group.Rolls {
			faces[i] = strconv.Itoa(die.Value)
			if die.Replaced {
				faces[i] += "*"
			}
		}
		fmt.Fprintf(r.out, "  %s: [%s] %+d = %d\n", r.printer.DamageType(group.Type), strings.Join(faces, " "), group.Bonus, group.Total)
	}
	if outcome.Result.CriticalBonus > 0 {
		fmt.Fprintf(r.out, "  +%d\n", outcome.Result.CriticalBonus)
	}
	fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyGrandTotal, outcome.Result.GrandTotal))
	if outcome.Result.TotalHealed > 0 {
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyTotalHealed, outcome.Result.TotalHealed))
	}
	fmt.Fprintf(r.out, "seed %d\n", outcome.Seed)
	return nil
}

func (r *runner) describeDamage(rolls []attack.DamageRoll) string {
	parts := make([]string, len(rolls))
	for i, roll := range rolls {
		parts[i] = roll.Dice
		if roll.Bonus != 0 {
			parts[i] += fmt.Sprintf("%+d", roll.Bonus)
		}
		parts[i] += " " + r.printer.DamageType(roll.Type)
	}
	return strings.Join(parts, ", ")
}
