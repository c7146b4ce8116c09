// Package engine implements the rules-resolution core of the game.
//
// The engine is the heart of the simulator: it receives player
// interactions, resolves them through the interaction automaton,
// broadcasts the resulting occurrences to the activated rule modules,
// settles their verdicts, and keeps the turn bookkeeping honest.
//
// ARCHITECTURE:
//
// Single-Threaded Table:
// Everything mutates on one goroutine. Rule modules are plain
// synchronous calls consulted in activation order, which ensures:
// - Predictable verdict resolution order
// - A reproducible journal for any given seed and input sequence
// - Simple reasoning about who changed what
//
// Interaction Flow:
// 1. Partial steps feed the automaton until a chain completes
// 2. The chain's handler turns the steps into a game occurrence
// 3. Dispatch records the occurrence and collects module verdicts
// 4. Resolve penalizes violations and runs deferred turn hooks
// 5. Turn-end reconciliation folds the closed turn out of the log
//
// Turn movement is never applied twice for one occurrence: either the
// modules' resolution moves it (override or hooks), or the occurrence's
// default movement runs, not both.
//
// The journal seq comes from the logical clock, never wall time, so
// recorded matches replay in exactly the order the table saw.
package engine
