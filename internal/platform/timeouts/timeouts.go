// Package timeouts defines shared timeout constants used by the session
// runtime and its command surfaces.
package timeouts

import "time"

// SnapshotLoad caps the wait for the initial snapshot read at startup.
const SnapshotLoad = 5 * time.Second

// SnapshotWrite caps a single background snapshot write.
const SnapshotWrite = 5 * time.Second

// StorageOpen caps how long a storage adapter may take to connect.
const StorageOpen = 10 * time.Second

// Shutdown limits how long a command waits for pending writes and telemetry
// flushes before exiting.
const Shutdown = 5 * time.Second
