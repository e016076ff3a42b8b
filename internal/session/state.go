package session

import (
	"time"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
)

// State is the lifecycle state of a Controller.
type State int

const (
	// StateUninitialized is a controller that has not started.
	StateUninitialized State = iota
	// StateLoading is a controller reading its snapshot.
	StateLoading
	// StateReady accepts mutations.
	StateReady
	// StateResetPending is waiting for a reset to be confirmed or cancelled.
	StateResetPending
	// StateClosing is a controller flushing its last writes. It rejects
	// mutations.
	StateClosing
	// StateClosed is a controller whose writer and store are closed.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateResetPending:
		return "reset_pending"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// acceptsMutations reports whether roster and catalog mutators may run.
func (s State) acceptsMutations() bool {
	return s == StateReady || s == StateResetPending
}

// EventType identifies an acknowledgment produced by the controller.
type EventType string

const (
	// EventResetSucceeded follows a confirmed reset.
	EventResetSucceeded EventType = "RESET_SUCCEEDED"
	// EventSaveFailed reports a background write that did not persist.
	EventSaveFailed EventType = "SAVE_FAILED"
	// EventLoadFailed reports a startup load that fell back to empty state.
	// Changes are not persisted after it until OverwriteStored is called.
	EventLoadFailed EventType = "LOAD_FAILED"
)

// Event is an acknowledgment for the UI layer. Reason is set for failures.
type Event struct {
	Type      EventType
	Reason    string
	Err       error
	Timestamp time.Time
}

// EventHandler receives controller events. It may be called from the
// background writer goroutine and must not call back into the controller
// synchronously.
type EventHandler func(Event)

func notReady(state State) error {
	return apperrors.WithMetadata(apperrors.CodeSessionNotReady, "session is not ready",
		map[string]string{"State": state.String()})
}

func invalidTransition(from State, action string) error {
	return apperrors.WithMetadata(apperrors.CodeSessionInvalidTransition, "cannot "+action+" while "+from.String(),
		map[string]string{"State": from.String(), "Action": action})
}
