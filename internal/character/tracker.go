package character

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/id"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tracker owns the characters of an encounter and its turn counter. It is
// not safe for concurrent use.
type Tracker struct {
	encounter Encounter
	newID     func() (string, error)
	now       func() time.Time
	onChange  func()
}

// NewTracker returns an empty tracker at turn zero.
func NewTracker() *Tracker {
	return &Tracker{
		encounter: Encounter{Characters: []Character{}},
		newID:     id.NewID,
		now:       time.Now,
	}
}

// OnChange registers fn to run after every successful mutation.
func (t *Tracker) OnChange(fn func()) {
	t.onChange = fn
}

func (t *Tracker) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}

func (t *Tracker) timestamp() time.Time {
	return t.now().UTC().Round(0)
}

// Input is the caller-supplied content of a new character.
type Input struct {
	Name         string
	MaxHP        int
	Regeneration int
}

// Edit changes the fields that are set. CurrentHP is capped at the
// resulting MaxHP.
type Edit struct {
	Name         *string
	MaxHP        *int
	CurrentHP    *int
	Regeneration *int
}

// DamageResult reports how a hit was absorbed.
type DamageResult struct {
	Dealt           int `json:"dealt"`
	AbsorbedByTemp  int `json:"absorbed_by_temp"`
	RemainingHP     int `json:"remaining_hp"`
	RemainingTempHP int `json:"remaining_temp_hp"`
}

// Len returns the number of characters.
func (t *Tracker) Len() int {
	return len(t.encounter.Characters)
}

// Create adds a character at full hit points and returns its id.
func (t *Tracker) Create(in Input) (string, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return "", err
	}
	if in.MaxHP <= 0 {
		return "", invalidHP("maxHp", in.MaxHP)
	}
	if in.Regeneration < 0 {
		return "", invalidHP("regeneration", in.Regeneration)
	}
	characterID, err := t.newID()
	if err != nil {
		return "", err
	}
	at := t.timestamp()
	c := Character{
		ID:           characterID,
		Name:         name,
		MaxHP:        in.MaxHP,
		CurrentHP:    in.MaxHP,
		Regeneration: in.Regeneration,
		CreatedAt:    at,
		Logs:         []LogEntry{},
	}
	t.log(&c, ActionCreated, in.MaxHP, at)
	t.encounter.Characters = append(t.encounter.Characters, c)
	t.changed()
	return characterID, nil
}

// Edit applies e to the character. Every field is validated before any is
// applied.
func (t *Tracker) Edit(characterID string, e Edit) error {
	c, err := t.find(characterID)
	if err != nil {
		return err
	}
	if e == (Edit{}) {
		return nil
	}
	next := *c
	if e.Name != nil {
		if next.Name, err = normalizeName(*e.Name); err != nil {
			return err
		}
	}
	if e.MaxHP != nil {
		if *e.MaxHP <= 0 {
			return invalidHP("maxHp", *e.MaxHP)
		}
		next.MaxHP = *e.MaxHP
	}
	if e.CurrentHP != nil {
		if *e.CurrentHP < 0 {
			return invalidHP("currentHp", *e.CurrentHP)
		}
		next.CurrentHP = *e.CurrentHP
	}
	if e.Regeneration != nil {
		if *e.Regeneration < 0 {
			return invalidHP("regeneration", *e.Regeneration)
		}
		next.Regeneration = *e.Regeneration
	}
	next.CurrentHP = min(next.CurrentHP, next.MaxHP)
	hpBefore, tempBefore := c.CurrentHP, c.TempHP
	*c = next
	t.logChange(c, ActionEdited, 0, hpBefore, tempBefore, t.timestamp())
	t.changed()
	return nil
}

// Delete removes the character.
func (t *Tracker) Delete(characterID string) error {
	for i := range t.encounter.Characters {
		if t.encounter.Characters[i].ID == characterID {
			t.encounter.Characters = append(t.encounter.Characters[:i], t.encounter.Characters[i+1:]...)
			t.changed()
			return nil
		}
	}
	return characterNotFound(characterID)
}

// Heal restores up to amount hit points without passing MaxHP and returns
// how many were restored.
func (t *Tracker) Heal(characterID string, amount int) (int, error) {
	c, err := t.find(characterID)
	if err != nil {
		return 0, err
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	healed := min(amount, c.MaxHP-c.CurrentHP)
	if healed <= 0 {
		return 0, nil
	}
	before := c.CurrentHP
	c.CurrentHP += healed
	t.logChange(c, ActionHealed, healed, before, c.TempHP, t.timestamp())
	t.changed()
	return healed, nil
}

// AddTempHP adds temporary hit points and returns the new temporary total.
func (t *Tracker) AddTempHP(characterID string, amount int) (int, error) {
	c, err := t.find(characterID)
	if err != nil {
		return 0, err
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	if amount == 0 {
		return c.TempHP, nil
	}
	if c.TempHP > math.MaxInt-amount {
		return 0, amountOverflow(characterID, amount)
	}
	before := c.TempHP
	c.TempHP += amount
	t.logChange(c, ActionTempHP, amount, c.CurrentHP, before, t.timestamp())
	t.changed()
	return c.TempHP, nil
}

// Damage applies a hit. Temporary hit points absorb damage first; current
// hit points never drop below zero.
func (t *Tracker) Damage(characterID string, amount int) (DamageResult, error) {
	c, err := t.find(characterID)
	if err != nil {
		return DamageResult{}, err
	}
	if err := validateAmount(amount); err != nil {
		return DamageResult{}, err
	}
	if amount == 0 {
		return DamageResult{RemainingHP: c.CurrentHP, RemainingTempHP: c.TempHP}, nil
	}
	hpBefore, tempBefore := c.CurrentHP, c.TempHP
	absorbed := min(c.TempHP, amount)
	c.TempHP -= absorbed
	c.CurrentHP = max(0, c.CurrentHP-(amount-absorbed))
	t.logChange(c, ActionDamaged, amount, hpBefore, tempBefore, t.timestamp())
	t.changed()
	return DamageResult{
		Dealt:           amount,
		AbsorbedByTemp:  absorbed,
		RemainingHP:     c.CurrentHP,
		RemainingTempHP: c.TempHP,
	}, nil
}

// ResetHP restores the character to MaxHP and clears temporary hit points.
func (t *Tracker) ResetHP(characterID string) error {
	c, err := t.find(characterID)
	if err != nil {
		return err
	}
	t.resetHP(c, t.timestamp())
	t.changed()
	return nil
}

// ResetAllHP restores every character to MaxHP.
func (t *Tracker) ResetAllHP() {
	if len(t.encounter.Characters) == 0 {
		return
	}
	at := t.timestamp()
	for i := range t.encounter.Characters {
		t.resetHP(&t.encounter.Characters[i], at)
	}
	t.changed()
}

func (t *Tracker) resetHP(c *Character, at time.Time) {
	hpBefore, tempBefore := c.CurrentHP, c.TempHP
	c.CurrentHP = c.MaxHP
	c.TempHP = 0
	t.logChange(c, ActionHPReset, c.MaxHP-hpBefore, hpBefore, tempBefore, at)
}

// StartTurn advances the turn counter and applies regeneration to every
// living character. It returns the new turn number.
func (t *Tracker) StartTurn() int {
	t.encounter.CurrentTurn++
	t.encounter.TurnActive = true
	at := t.timestamp()
	for i := range t.encounter.Characters {
		c := &t.encounter.Characters[i]
		if c.Regeneration > 0 && c.Alive() {
			healed := min(c.Regeneration, c.MaxHP-c.CurrentHP)
			if healed > 0 {
				before := c.CurrentHP
				c.CurrentHP += healed
				t.logChange(c, ActionRegenerated, healed, before, c.TempHP, at)
			}
		}
		t.log(c, ActionTurnStarted, t.encounter.CurrentTurn, at)
	}
	t.changed()
	return t.encounter.CurrentTurn
}

// EndTurn closes the turn in progress.
func (t *Tracker) EndTurn() error {
	if !t.encounter.TurnActive {
		return apperrors.WithMetadata(apperrors.CodeTurnNotActive, "no turn in progress",
			map[string]string{"Turn": strconv.Itoa(t.encounter.CurrentTurn)})
	}
	t.encounter.TurnActive = false
	at := t.timestamp()
	for i := range t.encounter.Characters {
		c := &t.encounter.Characters[i]
		t.log(c, ActionTurnEnded, t.encounter.CurrentTurn, at)
	}
	t.changed()
	return nil
}

// ResetTurns sets the turn counter back to zero.
func (t *Tracker) ResetTurns() {
	previous := t.encounter.CurrentTurn
	t.encounter.CurrentTurn = 0
	t.encounter.TurnActive = false
	at := t.timestamp()
	for i := range t.encounter.Characters {
		c := &t.encounter.Characters[i]
		t.log(c, ActionTurnsReset, previous, at)
	}
	t.changed()
}

// ClearLogs empties every character's log.
func (t *Tracker) ClearLogs() {
	for i := range t.encounter.Characters {
		t.encounter.Characters[i].Logs = []LogEntry{}
	}
	t.changed()
}

// Turn returns the current turn number and whether it is in progress.
func (t *Tracker) Turn() (int, bool) {
	return t.encounter.CurrentTurn, t.encounter.TurnActive
}

// List returns copies of every character in creation order.
func (t *Tracker) List() []Character {
	return t.encounter.Clone().Characters
}

// Get returns a copy of the character.
func (t *Tracker) Get(characterID string) (Character, error) {
	c, err := t.find(characterID)
	if err != nil {
		return Character{}, err
	}
	return c.Clone(), nil
}

// Encounter returns a copy of the tracker state.
func (t *Tracker) Encounter() Encounter {
	return t.encounter.Clone()
}

// Replace swaps the whole state for e, as loaded from storage. It does not
// fire the change hook.
func (t *Tracker) Replace(e Encounter) {
	t.encounter = e.Clone()
}

// Import validates e and replaces the tracker state with it.
func (t *Tracker) Import(e Encounter) error {
	if e.CurrentTurn < 0 {
		return invalidImport("currentTurn", strconv.Itoa(e.CurrentTurn))
	}
	seen := make(map[string]bool, len(e.Characters))
	for i, c := range e.Characters {
		switch {
		case strings.TrimSpace(c.ID) == "" || seen[c.ID]:
			return invalidImport("id", strconv.Itoa(i))
		case strings.TrimSpace(c.Name) == "":
			return invalidImport("name", strconv.Itoa(i))
		case c.MaxHP <= 0 || c.CurrentHP < 0 || c.CurrentHP > c.MaxHP || c.TempHP < 0 || c.Regeneration < 0:
			return invalidImport("hp", strconv.Itoa(i))
		}
		seen[c.ID] = true
	}
	t.encounter = e.Clone()
	for i := range t.encounter.Characters {
		c := &t.encounter.Characters[i]
		if len(c.Logs) > MaxLogEntries {
			c.Logs = c.Logs[:MaxLogEntries]
		}
	}
	t.changed()
	return nil
}

// SortByHP orders characters by effective hit points, lowest first. Ties
// keep their order.
func SortByHP(characters []Character) {
	sort.SliceStable(characters, func(i, j int) bool {
		return characters[i].EffectiveHP() < characters[j].EffectiveHP()
	})
}

// SortByName orders characters by name using the collation of locale.
func SortByName(characters []Character, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	collator := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(characters, func(i, j int) bool {
		return collator.CompareString(characters[i].Name, characters[j].Name) < 0
	})
}

func (t *Tracker) find(characterID string) (*Character, error) {
	for i := range t.encounter.Characters {
		if t.encounter.Characters[i].ID == characterID {
			return &t.encounter.Characters[i], nil
		}
	}
	return nil, characterNotFound(characterID)
}

func (t *Tracker) logChange(c *Character, action Action, amount, hpBefore, tempBefore int, at time.Time) {
	t.prepend(c, LogEntry{
		Timestamp:    at,
		Turn:         t.encounter.CurrentTurn,
		Action:       action,
		Amount:       amount,
		HPBefore:     hpBefore,
		HPAfter:      c.CurrentHP,
		TempHPBefore: tempBefore,
		TempHPAfter:  c.TempHP,
	})
}

// log records an action that did not change hit points.
func (t *Tracker) log(c *Character, action Action, amount int, at time.Time) {
	t.logChange(c, action, amount, c.CurrentHP, c.TempHP, at)
}

// prepend keeps logs newest first and capped at MaxLogEntries.
func (t *Tracker) prepend(c *Character, entry LogEntry) {
	logs := make([]LogEntry, 0, min(len(c.Logs)+1, MaxLogEntries))
	logs = append(logs, entry)
	for _, existing := range c.Logs {
		if len(logs) == MaxLogEntries {
			break
		}
		logs = append(logs, existing)
	}
	c.Logs = logs
}

func characterNotFound(characterID string) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterNotFound, "character not found",
		map[string]string{"CharacterID": characterID})
}

func invalidHP(field string, value int) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterInvalidHP, field+" is out of range",
		map[string]string{"Field": field, "Value": strconv.Itoa(value)})
}

func invalidImport(field, index string) error {
	return apperrors.WithMetadata(apperrors.CodeEncounterInvalidImport, "imported "+field+" is invalid",
		map[string]string{"Field": field, "Index": index})
}

func amountOverflow(characterID string, amount int) error {
	return apperrors.WithMetadata(apperrors.CodeCharacterInvalidAmount, "amount would overflow",
		map[string]string{"CharacterID": characterID, "Amount": strconv.Itoa(amount)})
}

func validateAmount(amount int) error {
	if amount < 0 {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidAmount, "amount must not be negative",
			map[string]string{"Amount": strconv.Itoa(amount)})
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	}
	return name, nil
}
