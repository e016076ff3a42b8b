// Package notice renders user-facing acknowledgments in the configured
// locale.
package notice

import (
	errorsi18n "github.com/louisbranch/dmscreen/internal/platform/errors/i18n"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by every surface.
const (
	KeyResetSucceeded   = "notice.reset_succeeded"
	KeyResetRequested   = "notice.reset_requested"
	KeyResetCancelled   = "notice.reset_cancelled"
	KeySaveFailed       = "notice.save_failed"
	KeyLoadFailed       = "notice.load_failed"
	KeyPlayerAdded      = "notice.player_added"
	KeyXPGranted        = "notice.xp_granted"
	KeyXPGrantedAll     = "notice.xp_granted_all"
	KeyAttackDuplicated = "notice.attack_duplicated"
	KeyStoredOverwrite  = "notice.stored_overwritten"
	KeyGrandTotal       = "combat.grand_total"
	KeyTotalHealed      = "combat.total_healed"

	KeyCharacterAdded = "encounter.character_added"
	KeyDamaged        = "encounter.damaged"
	KeyHealed         = "encounter.healed"
	KeyTempHP         = "encounter.temp_hp"
	KeyTurnStarted    = "encounter.turn_started"
	KeyTurnEnded      = "encounter.turn_ended"
	KeyTurnsReset     = "encounter.turns_reset"
	KeyNoTurn         = "encounter.no_turn"
	KeyTurnStatus     = "encounter.turn_status"
	KeyTurnIdle       = "encounter.turn_idle"
	KeyPassiveApplied = "encounter.passive_applied"
)

// Printer formats catalog messages for one locale.
type Printer struct {
	locale  string
	printer *message.Printer
}

// New returns a printer for the closest available locale.
func New(locale string) *Printer {
	resolved := catalog.Default().Match(locale)
	return &Printer{
		locale:  resolved,
		printer: message.NewPrinter(language.MustParse(resolved)),
	}
}

// Locale returns the resolved locale.
func (p *Printer) Locale() string {
	return p.locale
}

// Sprintf formats the message registered under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

// Error renders a domain error.
func (p *Printer) Error(err error) string {
	return errorsi18n.Message(p.locale, err)
}

// DamageType returns the display name of a damage type id, or the id itself
// when the catalog does not know it.
func (p *Printer) DamageType(id string) string {
	if name, ok := catalog.Default().Message(p.locale, "damage."+id); ok {
		return name
	}
	return id
}

// LogAction returns the display name of a character log action.
func (p *Printer) LogAction(action string) string {
	if name, ok := catalog.Default().Message(p.locale, "log."+action); ok {
		return name
	}
	return action
}
