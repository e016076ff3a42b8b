package dmscreen

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/dmscreen/internal/player"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/session"
)

const defaultTopAmounts = 5

// runner executes one subcommand.
type runner struct {
	controller *session.Controller
	printer    *notice.Printer
	in         io.Reader
	out        io.Writer
}

// localizedError carries the user-facing rendering of a domain error.
type localizedError struct {
	message string
	err     error
}

func (e *localizedError) Error() string { return e.message }
func (e *localizedError) Unwrap() error { return e.err }

func (r *runner) run(args []string) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}
	var err error
	switch args[0] {
	case "players":
		err = r.players(args[1:])
	case "xp":
		err = r.xp(args[1:])
	case "session":
		err = r.session(args[1:])
	case "attacks":
		err = r.attacks(args[1:])
	case "counters":
		err = r.counters(args[1:])
	case "characters":
		err = r.characters(args[1:])
	case "turns":
		err = r.turns(args[1:])
	case "passive":
		err = r.passive(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil && apperrors.GetCode(err) != apperrors.CodeUnknown {
		return &localizedError{message: r.printer.Error(err), err: err}
	}
	return err
}

func (r *runner) players(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: players list|add|rename|remove|notes")
	}
	switch args[0] {
	case "list":
		players, err := r.controller.Players()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tXP")
		for _, p := range players {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Name, p.XP)
		}
		return tw.Flush()
	case "add":
		if err := requireArgs(args[1:], 1, "players add NAME"); err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		playerID, err := r.controller.AddPlayer(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyPlayerAdded, strings.TrimSpace(name)))
		fmt.Fprintln(r.out, playerID)
		return nil
	case "rename":
		if err := requireArgs(args[1:], 2, "players rename ID NAME"); err != nil {
			return err
		}
		return r.controller.RenamePlayer(args[1], strings.Join(args[2:], " "))
	case "remove":
		if err := requireArgs(args[1:], 1, "players remove ID"); err != nil {
			return err
		}
		return r.controller.DeletePlayer(args[1])
	case "notes":
		if err := requireArgs(args[1:], 1, "players notes ID [TEXT]"); err != nil {
			return err
		}
		if len(args) == 2 {
			p, err := r.controller.Player(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(r.out, p.Notes)
			return nil
		}
		return r.controller.SetPlayerNotes(args[1], strings.Join(args[2:], " "))
	default:
		return fmt.Errorf("unknown players command %q", args[0])
	}
}

func (r *runner) xp(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: xp grant|grant-all|revoke|top")
	}
	switch args[0] {
	case "grant":
		if err := requireArgs(args[1:], 2, "xp grant ID AMOUNT"); err != nil {
			return err
		}
		amount, err := player.ParseAmount(args[2])
		if err != nil {
			return err
		}
		if err := r.controller.GrantXP(args[1], amount); err != nil {
			return err
		}
		p, err := r.controller.Player(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyXPGranted, p.Name, amount))
		return nil
	case "grant-all":
		if err := requireArgs(args[1:], 1, "xp grant-all AMOUNT"); err != nil {
			return err
		}
		amount, err := player.ParseAmount(args[1])
		if err != nil {
			return err
		}
		if err := r.controller.GrantXPToAll(amount); err != nil {
			return err
		}
		fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyXPGrantedAll, amount))
		return nil
	case "revoke":
		if err := requireArgs(args[1:], 2, "xp revoke ID AMOUNT"); err != nil {
			return err
		}
		amount, err := player.ParseAmount(args[2])
		if err != nil {
			return err
		}
		return r.controller.RevokeXP(args[1], amount)
	case "top":
		n := defaultTopAmounts
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q", args[1])
			}
			n = parsed
		}
		amounts, err := r.controller.MostUsedXPAmounts(n)
		if err != nil {
			return err
		}
		for _, amount := range amounts {
			fmt.Fprintln(r.out, amount)
		}
		return nil
	default:
		return fmt.Errorf("unknown xp command %q", args[0])
	}
}

func (r *runner) session(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: session reset [-yes] | session overwrite -yes")
	}
	switch args[0] {
	case "reset":
		return r.resetSession(args[1:])
	case "overwrite":
		return r.overwriteStored(args[1:])
	default:
		return fmt.Errorf("unknown session command %q", args[0])
	}
}

// overwriteStored writes the in-memory state over a snapshot that failed to
// load. It requires -yes because the stored snapshot is lost.
func (r *runner) overwriteStored(args []string) error {
	fs := flag.NewFlagSet("session overwrite", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "replace the stored session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("usage: session overwrite -yes")
	}
	if err := r.controller.OverwriteStored(); err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyStoredOverwrite))
	return nil
}

func (r *runner) resetSession(args []string) error {
	fs := flag.NewFlagSet("session reset", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "confirm without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := r.controller.RequestReset(); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprint(r.out, r.printer.Sprintf(notice.KeyResetRequested)+" [y/N] ")
		if !confirmed(r.in) {
			if err := r.controller.CancelReset(); err != nil {
				return err
			}
			fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyResetCancelled))
			return nil
		}
	}
	if _, err := r.controller.ConfirmReset(); err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.printer.Sprintf(notice.KeyResetSucceeded))
	return nil
}

func confirmed(in io.Reader) bool {
	if in == nil {
		return false
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	default:
		return false
	}
}

func (r *runner) counters(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: counters list|add|adjust|remove")
	}
	switch args[0] {
	case "list":
		if err := requireArgs(args[1:], 1, "counters list PLAYER"); err != nil {
			return err
		}
		p, err := r.controller.Player(args[1])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tVALUE\tSTEP\tVISIBLE")
		for _, c := range p.Counters {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\n", c.ID, c.Name, c.Value, c.Step, c.Visible)
		}
		return tw.Flush()
	case "add":
		fs := flag.NewFlagSet("counters add", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		value := fs.Int("value", 0, "initial value")
		step := fs.Int("step", 1, "adjustment step")
		hidden := fs.Bool("hidden", false, "hide the counter")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		rest := fs.Args()
		if err := requireArgs(rest, 2, "counters add [-value N] [-step N] [-hidden] PLAYER NAME"); err != nil {
			return err
		}
		counterID, err := r.controller.AddCounter(rest[0], player.CounterInput{
			Name:   strings.Join(rest[1:], " "),
			Value:  *value,
			Step:   *step,
			Hidden: *hidden,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, counterID)
		return nil
	case "adjust":
		if err := requireArgs(args[1:], 3, "counters adjust PLAYER COUNTER STEPS"); err != nil {
			return err
		}
		steps, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid steps %q", args[3])
		}
		value, err := r.controller.AdjustCounter(args[1], args[2], steps)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, value)
		return nil
	case "remove":
		if err := requireArgs(args[1:], 2, "counters remove PLAYER COUNTER"); err != nil {
			return err
		}
		return r.controller.DeleteCounter(args[1], args[2])
	default:
		return fmt.Errorf("unknown counters command %q", args[0])
	}
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
