// Package database provides SQLite-based storage for urlguard.
//
// HistoryDB stores:
//   - Predictions, with their probabilities and feature vectors as JSON
//   - The model artifacts that produced them, keyed by checksum
//
// The database is a single file (urlguard.db) opened through the CGO-free
// modernc.org/sqlite driver in WAL mode. HistoryDB satisfies the recorder
// used by the prediction pipeline, so every classified URL can be kept for
// later review with the history command.
package database
