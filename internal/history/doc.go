// Package history persists applied colour commands to SQLite.
//
// Every command that the bridge successfully delivers to the bulb is
// recorded here with its origin (MIDI, host parameters, or MQTT) and
// the send latency. The table is write-mostly: entries are queried for
// diagnostics and trimmed by age, never replayed into the bulb.
//
// # Architecture
//
//	   bridge OnApplied
//	         │
//	         ▼
//	┌─────────────────┐      ┌──────────────────┐
//	│   Repository    │─────▶│  command_history  │
//	│  RecordApplied  │      │   (SQLite table)  │
//	└─────────────────┘      └──────────────────┘
//	         │
//	         ├── Recent()  newest-first listing for diagnostics
//	         └── Prune()   age-based retention
//
// # Concurrency
//
// The repository is safe for concurrent use; it holds no state of its
// own beyond the *sql.DB handle, which serialises writes per SQLite's
// single-writer model.
package history
