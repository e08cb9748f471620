// Package database provides SQLite-based storage for comparison history.
//
// This package implements the ResultDB, which stores:
//   - Comparison runs with their overall outcome and counts
//   - The full comparison payload as JSON for later inspection
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Runs are keyed by the content hashes of the two input files, so the
// history of a monitored/reference pair survives file renames and moves.
package database
