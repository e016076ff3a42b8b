package player

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/id"
	"golang.org/x/text/unicode/norm"
)

// Roster is the ordered set of players. It is not safe for concurrent use.
type Roster struct {
	players  []Player
	newID    func() (string, error)
	now      func() time.Time
	onChange func()
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{newID: id.NewID, now: time.Now}
}

// OnChange registers fn to run after every successful mutation.
func (r *Roster) OnChange(fn func()) {
	r.onChange = fn
}

func (r *Roster) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

func (r *Roster) timestamp() time.Time {
	return r.now().UTC().Round(0)
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Add creates a player with zero XP and the default counters.
func (r *Roster) Add(name string) (string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	playerID, err := r.newID()
	if err != nil {
		return "", err
	}
	counters, err := defaultCounters()
	if err != nil {
		return "", err
	}
	r.players = append(r.players, Player{
		ID:        playerID,
		Name:      name,
		XPHistory: []XPEntry{},
		Counters:  counters,
	})
	r.changed()
	return playerID, nil
}

// GrantXP adds amount to the player's session XP. A zero amount is accepted
// and changes nothing.
func (r *Roster) GrantXP(playerID string, amount int) error {
	p, err := r.find(playerID)
	if err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := checkHeadroom(p, amount); err != nil {
		return err
	}
	r.apply(p, amount, r.timestamp())
	r.changed()
	return nil
}

// GrantXPToAll grants amount to every player. The amount is checked against
// every player before any player is touched.
func (r *Roster) GrantXPToAll(amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount == 0 || len(r.players) == 0 {
		return nil
	}
	for i := range r.players {
		if err := checkHeadroom(&r.players[i], amount); err != nil {
			return err
		}
	}
	at := r.timestamp()
	for i := range r.players {
		r.apply(&r.players[i], amount, at)
	}
	r.changed()
	return nil
}

// RevokeXP subtracts amount from the player's session XP. The total may not
// drop below zero.
func (r *Roster) RevokeXP(playerID string, amount int) error {
	p, err := r.find(playerID)
	if err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if p.XP-amount < 0 {
		return apperrors.WithMetadata(apperrors.CodePlayerXPBelowZero, "revocation would make XP negative",
			map[string]string{"PlayerID": playerID, "XP": strconv.Itoa(p.XP), "Amount": strconv.Itoa(amount)})
	}
	r.apply(p, -amount, r.timestamp())
	r.changed()
	return nil
}

func (r *Roster) apply(p *Player, amount int, at time.Time) {
	p.XP += amount
	p.XPHistory = append(p.XPHistory, XPEntry{Amount: amount, Timestamp: at})
}

// ResetAll zeroes every player's XP and history. Players, names, notes and
// counters are kept.
func (r *Roster) ResetAll() {
	for i := range r.players {
		r.players[i].XP = 0
		r.players[i].XPHistory = []XPEntry{}
	}
	r.changed()
}

// Totals maps player id to session XP.
func (r *Roster) Totals() map[string]int {
	out := make(map[string]int, len(r.players))
	for _, p := range r.players {
		out[p.ID] = p.XP
	}
	return out
}

// List returns copies of every player in roster order.
func (r *Roster) List() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the player.
func (r *Roster) Get(playerID string) (Player, error) {
	p, err := r.find(playerID)
	if err != nil {
		return Player{}, err
	}
	return p.Clone(), nil
}

// Rename changes the player's display name.
func (r *Roster) Rename(playerID, name string) error {
	p, err := r.find(playerID)
	if err != nil {
		return err
	}
	name, err = normalizeName(name)
	if err != nil {
		return err
	}
	p.Name = name
	r.changed()
	return nil
}

// SetNotes replaces the player's free-form notes.
func (r *Roster) SetNotes(playerID, notes string) error {
	p, err := r.find(playerID)
	if err != nil {
		return err
	}
	p.Notes = notes
	r.changed()
	return nil
}

// Delete removes the player.
func (r *Roster) Delete(playerID string) error {
	for i := range r.players {
		if r.players[i].ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			r.changed()
			return nil
		}
	}
	return playerNotFound(playerID)
}

// Replace swaps the whole roster for players, as loaded from storage. It does
// not fire the change hook.
func (r *Roster) Replace(players []Player) {
	r.players = make([]Player, len(players))
	for i, p := range players {
		r.players[i] = p.Clone()
	}
}

// MostUsedXPAmounts returns up to n grant amounts ordered by how often they
// appear across every history, ties broken by the smaller amount.
// Revocations are not counted.
func (r *Roster) MostUsedXPAmounts(n int) ([]int, error) {
	if n <= 0 {
		return nil, apperrors.New(apperrors.CodePlayerInvalidTopAmount, "count must be positive")
	}
	counts := make(map[int]int)
	for _, p := range r.players {
		for _, entry := range p.XPHistory {
			if entry.Amount > 0 {
				counts[entry.Amount]++
			}
		}
	}
	amounts := make([]int, 0, len(counts))
	for amount := range counts {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool {
		if counts[amounts[i]] != counts[amounts[j]] {
			return counts[amounts[i]] > counts[amounts[j]]
		}
		return amounts[i] < amounts[j]
	})
	if len(amounts) > n {
		amounts = amounts[:n]
	}
	return amounts, nil
}

func (r *Roster) find(playerID string) (*Player, error) {
	for i := range r.players {
		if r.players[i].ID == playerID {
			return &r.players[i], nil
		}
	}
	return nil, playerNotFound(playerID)
}

func playerNotFound(playerID string) error {
	return apperrors.WithMetadata(apperrors.CodePlayerNotFound, "player not found",
		map[string]string{"PlayerID": playerID})
}

// ParseAmount reads a user-typed XP amount. Only non-negative base-10
// integers are accepted.
func ParseAmount(text string) (int, error) {
	text = strings.TrimSpace(text)
	amount, err := strconv.Atoi(text)
	if err != nil {
		return 0, &apperrors.Error{
			Code:     apperrors.CodePlayerInvalidXPAmount,
			Message:  "XP amount must be a whole number",
			Metadata: map[string]string{"Input": text},
			Cause:    err,
		}
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// checkHeadroom rejects a grant that would overflow the player's total.
func checkHeadroom(p *Player, amount int) error {
	if p.XP > math.MaxInt-amount {
		return apperrors.WithMetadata(apperrors.CodePlayerInvalidXPAmount, "XP total would overflow",
			map[string]string{"PlayerID": p.ID, "XP": strconv.Itoa(p.XP), "Amount": strconv.Itoa(amount)})
	}
	return nil
}

func validateAmount(amount int) error {
	if amount < 0 {
		return apperrors.WithMetadata(apperrors.CodePlayerInvalidXPAmount, "XP amount must not be negative",
			map[string]string{"Amount": strconv.Itoa(amount)})
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", apperrors.New(apperrors.CodePlayerEmptyName, "player name is required")
	}
	return name, nil
}
