// Package session owns the current DM screen session.
//
// A Controller loads the last snapshot into a player roster and an attack
// catalog, serializes every mutation through its facade methods, persists
// the state in the background after each change and models the two-step
// session reset as an explicit state:
//
//	Uninitialized -> Loading -> Ready <-> ResetPending
//
// Storage failures never reach callers of mutating methods. They are
// reported as events (see EventType) and logged.
package session
