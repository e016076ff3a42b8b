package player

import (
	"strings"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/id"
)

// CounterInput is the caller-supplied content of a counter. A zero Step
// defaults to 1.
type CounterInput struct {
	Name   string
	Value  int
	Step   int
	Hidden bool
}

func (in CounterInput) normalize() (CounterInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return CounterInput{}, apperrors.New(apperrors.CodeCounterEmptyName, "counter name is required")
	}
	if in.Step == 0 {
		in.Step = 1
	}
	if in.Step < 0 {
		return CounterInput{}, apperrors.New(apperrors.CodeCounterInvalidStep, "counter step must be positive")
	}
	return in, nil
}

func defaultCounters() ([]Counter, error) {
	counters := make([]Counter, 0, len(DefaultCounterNames))
	for _, name := range DefaultCounterNames {
		counterID, err := id.NewID()
		if err != nil {
			return nil, err
		}
		counters = append(counters, Counter{ID: counterID, Name: name, Step: 1, Visible: true})
	}
	return counters, nil
}

// AddCounter appends a counter to the player and returns its id.
func (r *Roster) AddCounter(playerID string, in CounterInput) (string, error) {
	p, err := r.find(playerID)
	if err != nil {
		return "", err
	}
	in, err = in.normalize()
	if err != nil {
		return "", err
	}
	counterID, err := r.newID()
	if err != nil {
		return "", err
	}
	p.Counters = append(p.Counters, Counter{
		ID:      counterID,
		Name:    in.Name,
		Value:   in.Value,
		Step:    in.Step,
		Visible: !in.Hidden,
	})
	r.changed()
	return counterID, nil
}

// UpdateCounter replaces the counter's name, value, step and visibility.
func (r *Roster) UpdateCounter(playerID, counterID string, in CounterInput) error {
	c, err := r.findCounter(playerID, counterID)
	if err != nil {
		return err
	}
	in, err = in.normalize()
	if err != nil {
		return err
	}
	c.Name, c.Value, c.Step, c.Visible = in.Name, in.Value, in.Step, !in.Hidden
	r.changed()
	return nil
}

// DeleteCounter removes the counter from the player.
func (r *Roster) DeleteCounter(playerID, counterID string) error {
	p, err := r.find(playerID)
	if err != nil {
		return err
	}
	for i := range p.Counters {
		if p.Counters[i].ID == counterID {
			p.Counters = append(p.Counters[:i], p.Counters[i+1:]...)
			r.changed()
			return nil
		}
	}
	return counterNotFound(playerID, counterID)
}

// AdjustCounter moves the counter value by steps times its step and returns
// the new value.
func (r *Roster) AdjustCounter(playerID, counterID string, steps int) (int, error) {
	c, err := r.findCounter(playerID, counterID)
	if err != nil {
		return 0, err
	}
	if steps == 0 {
		return c.Value, nil
	}
	c.Value += steps * c.Step
	r.changed()
	return c.Value, nil
}

func (r *Roster) findCounter(playerID, counterID string) (*Counter, error) {
	p, err := r.find(playerID)
	if err != nil {
		return nil, err
	}
	for i := range p.Counters {
		if p.Counters[i].ID == counterID {
			return &p.Counters[i], nil
		}
	}
	return nil, counterNotFound(playerID, counterID)
}

func counterNotFound(playerID, counterID string) error {
	return apperrors.WithMetadata(apperrors.CodeCounterNotFound, "counter not found",
		map[string]string{"PlayerID": playerID, "CounterID": counterID})
}
