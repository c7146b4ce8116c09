// Package store is the SQLite-backed journal for Mao matches.
//
// The journal is an append-only audit trail with two tables:
//   - occurrences: everything that happened at the table, with the
//     typed detail flattened into a JSON payload
//   - violations: every wrongdoing a rule resolved, with its penalty
//     already applied by the engine
//
// Every row is keyed by the match token and stamped with the engine's
// logical clock; ordering always uses seq, never wall time, so a
// journal reads back in exactly the order the table saw things.
// Writes are idempotent per (match_token, seq), so re-recording a row
// is harmless.
//
// The journal never reconstructs a Game. Reads return rows for
// browsing and filtering, not state to resume from.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability and performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// The schema is embedded and applied idempotently on every Open;
// user_version tracks incremental migrations for databases created by
// older builds.
package store
