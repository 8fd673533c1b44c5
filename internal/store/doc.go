// Package store provides SQLite-backed storage for tri-ton expansions and
// recorded runs.
//
// The store holds two append-only tables:
//   - Expansions: the expanded program for one source text, keyed by
//     ir.ExpansionKey (source, variant catalog, engine and IR version)
//   - Runs: the outcome of executing an expansion (entry point, arguments,
//     value or error code, steps, printed output)
//
// # Critical Patterns
//
// Content-Addressed Expansions
//   - The key covers everything that can change the expanded output, so a
//     hit is always safe to reuse and entries are never updated in place
//   - Saving an existing key is a no-op (ON CONFLICT DO NOTHING)
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Queries order by seq ASC, id ASC COLLATE BINARY
//
// Deterministic Runs
//   - A recorded run carries everything needed to execute it again; a
//     replay that produces a different value, output or step count means
//     determinism broke
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
