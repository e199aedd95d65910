// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime configuration, debug introspection and metrics export for
// hioload-channels.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads and atomic updates with reload listeners
//   - Debug probes over channel statistics
//   - A Prometheus collector exporting registered channels
package control
