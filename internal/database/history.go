package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/urlguard/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the history database inside its directory.
const FileName = "urlguard.db"

// HistoryDB provides SQLite-based storage for predictions and the models
// that produced them.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. Batch predictions record their
	// history concurrently, so all access goes through one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Predictions store one classified URL each
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		registered_domain TEXT,
		label TEXT,
		confidence REAL DEFAULT 0,
		probabilities TEXT,
		features TEXT NOT NULL,
		model_checksum TEXT,
		schema_version INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_url ON predictions(url);
	CREATE INDEX IF NOT EXISTS idx_predictions_label ON predictions(label);
	CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions(timestamp);

	-- Models track every artifact that produced a prediction
	CREATE TABLE IF NOT EXISTS models (
		checksum TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		format TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		classes TEXT NOT NULL,
		num_trees INTEGER NOT NULL,
		first_seen TEXT NOT NULL
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SavePrediction stores a prediction. An empty ID is replaced by a new UUID;
// saving a prediction with an existing ID overwrites it.
func (hdb *HistoryDB) SavePrediction(ctx context.Context, p *model.Prediction) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	probaJSON, err := json.Marshal(p.Probabilities)
	if err != nil {
		return fmt.Errorf("failed to serialize probabilities: %w", err)
	}
	featuresJSON, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("failed to serialize features: %w", err)
	}

	query := `
	INSERT INTO predictions (id, url, registered_domain, label, confidence, probabilities, features, model_checksum, schema_version, timestamp, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		registered_domain = excluded.registered_domain,
		label = excluded.label,
		confidence = excluded.confidence,
		probabilities = excluded.probabilities,
		features = excluded.features,
		model_checksum = excluded.model_checksum,
		schema_version = excluded.schema_version,
		timestamp = excluded.timestamp,
		error = excluded.error
	`

	_, err = hdb.db.ExecContext(ctx, query,
		p.ID,
		p.URL,
		p.RegisteredDomain,
		p.Label,
		p.Confidence(),
		string(probaJSON),
		string(featuresJSON),
		p.ModelChecksum,
		p.SchemaVersion,
		formatTimestamp(p.Timestamp),
		p.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	return nil
}

const predictionColumns = `id, url, registered_domain, label, probabilities, features, model_checksum, schema_version, timestamp, error`

// GetPrediction retrieves a prediction by its ID.
// Returns nil without error if no prediction has that ID.
func (hdb *HistoryDB) GetPrediction(ctx context.Context, id string) (*model.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = ?`

	p, err := scanPrediction(hdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// GetHistory retrieves the predictions made for url, newest first.
// A limit of zero or less returns all of them.
func (hdb *HistoryDB) GetHistory(ctx context.Context, url string, limit int) ([]*model.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE url = ? ORDER BY timestamp DESC, rowid DESC`
	args := []any{url}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return hdb.queryPredictions(ctx, query, args...)
}

// ListRecent retrieves the latest predictions across all URLs.
// A limit of zero or less returns all of them.
func (hdb *HistoryDB) ListRecent(ctx context.Context, limit int) ([]*model.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions ORDER BY timestamp DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return hdb.queryPredictions(ctx, query, args...)
}

// ListByLabel retrieves the predictions carrying label, newest first.
func (hdb *HistoryDB) ListByLabel(ctx context.Context, label string, limit int) ([]*model.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE label = ? ORDER BY timestamp DESC, rowid DESC`
	args := []any{label}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return hdb.queryPredictions(ctx, query, args...)
}

// HasRecentPrediction checks if url was classified within the specified duration.
func (hdb *HistoryDB) HasRecentPrediction(ctx context.Context, url string, duration time.Duration, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM predictions WHERE url = ? AND timestamp > ? AND error = ''`

	var count int
	err := hdb.db.QueryRowContext(ctx, query, url, formatTimestamp(now.Add(-duration))).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent prediction: %w", err)
	}

	return count > 0, nil
}

// LabelCount is the number of stored predictions carrying a label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelCounts returns the number of successful predictions per label, sorted by label.
func (hdb *HistoryDB) LabelCounts(ctx context.Context) ([]LabelCount, error) {
	query := `
	SELECT label, COUNT(*) FROM predictions
	WHERE error = ''
	GROUP BY label
	ORDER BY label
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	var results []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		results = append(results, lc)
	}

	return results, rows.Err()
}

// ListDomains returns all registered domains seen in predictions.
func (hdb *HistoryDB) ListDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT registered_domain FROM predictions
	WHERE registered_domain != ''
	ORDER BY registered_domain
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

func (hdb *HistoryDB) queryPredictions(ctx context.Context, query string, args ...any) ([]*model.Prediction, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var results []*model.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		results = append(results, p)
	}

	return results, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (*model.Prediction, error) {
	var (
		p            model.Prediction
		domain       sql.NullString
		label        sql.NullString
		probaJSON    sql.NullString
		featuresJSON string
		checksum     sql.NullString
		timestamp    string
		errText      sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.URL,
		&domain,
		&label,
		&probaJSON,
		&featuresJSON,
		&checksum,
		&p.SchemaVersion,
		&timestamp,
		&errText,
	)
	if err != nil {
		return nil, err
	}

	p.RegisteredDomain = domain.String
	p.Label = label.String
	p.ModelChecksum = checksum.String
	p.Error = errText.String
	p.Timestamp = parseTimestamp(timestamp)

	if probaJSON.Valid && probaJSON.String != "" && probaJSON.String != "null" {
		if err := json.Unmarshal([]byte(probaJSON.String), &p.Probabilities); err != nil {
			return nil, fmt.Errorf("failed to parse probabilities: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(featuresJSON), &p.Features); err != nil {
		return nil, fmt.Errorf("failed to parse features: %w", err)
	}

	return &p, nil
}

// ModelRecord describes a model artifact that produced predictions.
type ModelRecord struct {
	// Checksum is the BLAKE2b-256 digest of the artifact.
	Checksum string `json:"checksum"`

	// Path is where the artifact was loaded from when first seen.
	Path string `json:"path"`

	// Format is the artifact format identifier.
	Format string `json:"format"`

	// SchemaVersion is the feature schema the model was trained on.
	SchemaVersion int `json:"schema_version"`

	// Classes are the model classes in output order.
	Classes []string `json:"classes"`

	// NumTrees is the size of the ensemble.
	NumTrees int `json:"num_trees"`

	// FirstSeen is when the model was first recorded.
	FirstSeen time.Time `json:"first_seen"`
}

// RecordModel stores a model the first time its checksum is seen.
// Later calls with the same checksum leave the record untouched.
func (hdb *HistoryDB) RecordModel(ctx context.Context, m *ModelRecord) error {
	classesJSON, err := json.Marshal(m.Classes)
	if err != nil {
		return fmt.Errorf("failed to serialize classes: %w", err)
	}

	query := `
	INSERT INTO models (checksum, path, format, schema_version, classes, num_trees, first_seen)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(checksum) DO NOTHING
	`

	_, err = hdb.db.ExecContext(ctx, query,
		m.Checksum,
		m.Path,
		m.Format,
		m.SchemaVersion,
		string(classesJSON),
		m.NumTrees,
		formatTimestamp(m.FirstSeen),
	)
	if err != nil {
		return fmt.Errorf("failed to record model: %w", err)
	}

	return nil
}

// GetModel retrieves a model record by checksum.
// Returns nil without error if the model was never recorded.
func (hdb *HistoryDB) GetModel(ctx context.Context, checksum string) (*ModelRecord, error) {
	query := `
	SELECT checksum, path, format, schema_version, classes, num_trees, first_seen
	FROM models
	WHERE checksum = ?
	`

	var m ModelRecord
	var classesJSON, firstSeen string

	err := hdb.db.QueryRowContext(ctx, query, checksum).Scan(
		&m.Checksum,
		&m.Path,
		&m.Format,
		&m.SchemaVersion,
		&classesJSON,
		&m.NumTrees,
		&firstSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	m.FirstSeen = parseTimestamp(firstSeen)
	if err := json.Unmarshal([]byte(classesJSON), &m.Classes); err != nil {
		return nil, fmt.Errorf("failed to parse classes: %w", err)
	}

	return &m, nil
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
