// Package storage defines the snapshot persistence contract for the DM screen.
//
// A Snapshot is the whole roster and attack catalog, persisted as one unit in
// a single slot. Adapters live in subpackages (memory, sqlite, bbolt and
// postgres); each overwrites the slot atomically so a reader never observes a
// partially written snapshot.
//
// # Error Types
//
// Adapters report medium failures as platform errors with a storage kind:
//   - CodeStorageSave: the snapshot could not be written.
//   - CodeStorageLoad: the slot could not be read.
//   - CodeStorageCorrupt: the slot holds bytes that do not decode.
//
// An empty slot is not an error; Load reports it with found == false.
package storage
