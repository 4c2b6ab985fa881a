// Package database provides SQLite-based scan history for webpulse.
//
// Every scan run by the CLI or the HTTP API is stored as one row of the
// scans table: the scores and severity counts as columns for cheap listing
// and aggregation, and the complete report as JSON for later rendering and
// comparison.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets the API server read history while a scan is saved
package database
