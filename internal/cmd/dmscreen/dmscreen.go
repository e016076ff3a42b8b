// Package dmscreen parses the dmscreen command line and runs its subcommands
// against a session controller.
package dmscreen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"sync"

	platformcmd "github.com/louisbranch/dmscreen/internal/platform/cmd"
	"github.com/louisbranch/dmscreen/internal/platform/config"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/platform/otel"
	"github.com/louisbranch/dmscreen/internal/platform/timeouts"
	"github.com/louisbranch/dmscreen/internal/session"
	"github.com/louisbranch/dmscreen/internal/storage/driver"
)

// Config holds dmscreen command configuration.
type Config struct {
	Storage   driver.Config
	Locale    string `env:"DMSCREEN_LOCALE" envDefault:"es-ES"`
	Telemetry otel.Config

	// Args is the subcommand and its arguments.
	Args []string `env:"-"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.LookupFunc) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfigWith(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "storage driver: sqlite, bbolt, postgres or memory")
	fs.StringVar(&cfg.Storage.SQLitePath, "sqlite-path", cfg.Storage.SQLitePath, "SQLite snapshot file")
	fs.StringVar(&cfg.Storage.BboltPath, "bbolt-path", cfg.Storage.BboltPath, "bbolt snapshot file")
	fs.StringVar(&cfg.Storage.PostgresDSN, "postgres-dsn", cfg.Storage.PostgresDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for messages (en-US, es-ES)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	if len(cfg.Args) == 0 {
		return Config{}, errors.New("missing command: players, xp, session, attacks, counters, characters, turns or passive")
	}
	return cfg, nil
}

// Run opens the configured store, starts a session and executes cfg.Args.
func Run(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceCLI, cfg.Telemetry, func(ctx context.Context) error {
		store, err := driver.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		printer := notice.New(cfg.Locale)
		events := &eventReporter{printer: printer, out: errOut}
		controller, err := session.NewController(store, session.Options{OnEvent: events.report})
		if err != nil {
			_ = store.Close()
			return err
		}
		if err := controller.Start(ctx); err != nil {
			_ = store.Close()
			return fmt.Errorf("start session: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
			defer cancel()
			if err := controller.Close(closeCtx); err != nil {
				log.Printf("dmscreen close session: %v", err)
			}
		}()

		r := &runner{
			controller: controller,
			printer:    printer,
			in:         in,
			out:        out,
		}
		return r.run(cfg.Args)
	})
}

// eventReporter prints controller events. Save failures arrive from the
// writer goroutine.
type eventReporter struct {
	mu      sync.Mutex
	printer *notice.Printer
	out     io.Writer
}

func (e *eventReporter) report(event session.Event) {
	if e.out == nil {
		return
	}
	var line string
	switch event.Type {
	case session.EventSaveFailed:
		line = e.printer.Sprintf(notice.KeySaveFailed, e.printer.Error(event.Err))
	case session.EventLoadFailed:
		line = e.printer.Sprintf(notice.KeyLoadFailed, e.printer.Error(event.Err))
	default:
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, line)
}
