package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/histcmp/histcmp/internal/checks"
	"github.com/histcmp/histcmp/internal/compare"
)

// ResultDB provides SQLite-based storage for comparison runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all runs rather
// than one file per input pair. This simplifies history queries across
// pairs and backup/restore operations.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
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

// Open opens or creates a ResultDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, "histcmp.db")

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

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
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

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// Path returns the path of the underlying database file.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ResultDB) createTables() error {
	schema := `
	-- Runs store one row per comparison with summary counts and the
	-- full comparison payload as JSON.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		monitored_path TEXT NOT NULL,
		reference_path TEXT NOT NULL,
		monitored_hash TEXT NOT NULL,
		reference_hash TEXT NOT NULL,
		status INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		inconclusive INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		comparison_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_pair ON runs(monitored_hash, reference_hash);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is the stored metadata of one comparison run.
type RunSummary struct {
	ID            int64
	Title         string
	MonitoredPath string
	ReferencePath string
	MonitoredHash string
	ReferenceHash string
	Status        checks.Status
	Passed        int
	Failed        int
	Inconclusive  int
	Timestamp     time.Time
}

// SaveRun stores a comparison run and returns its row ID.
func (rdb *ResultDB) SaveRun(ctx context.Context, comp *compare.Comparison) (int64, error) {
	compJSON, err := json.Marshal(comp)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize comparison: %w", err)
	}

	passed, failed, inconclusive := comp.Counts()

	query := `
	INSERT INTO runs (title, monitored_path, reference_path, monitored_hash, reference_hash,
		status, passed, failed, inconclusive, timestamp, comparison_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		comp.Title,
		comp.MonitoredPath,
		comp.ReferencePath,
		comp.MonitoredHash,
		comp.ReferenceHash,
		int(comp.Status),
		passed,
		failed,
		inconclusive,
		comp.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		string(compJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// GetRun retrieves the full comparison payload of a run by ID.
// Returns nil without error when the run does not exist.
func (rdb *ResultDB) GetRun(ctx context.Context, id int64) (*compare.Comparison, error) {
	query := `SELECT comparison_json FROM runs WHERE id = ?`

	var compJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&compJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var comp compare.Comparison
	if err := json.Unmarshal([]byte(compJSON), &comp); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &comp, nil
}

// ListRuns returns run summaries ordered from newest to oldest.
// A limit of 0 returns all runs.
func (rdb *ResultDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, title, monitored_path, reference_path, monitored_hash, reference_hash,
		status, passed, failed, inconclusive, timestamp
	FROM runs
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

// RunsForPair returns run summaries for one monitored/reference file
// pair, identified by content hashes, newest first. A limit of 0
// returns all matching runs.
func (rdb *ResultDB) RunsForPair(ctx context.Context, monitoredHash, referenceHash string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, title, monitored_path, reference_path, monitored_hash, reference_hash,
		status, passed, failed, inconclusive, timestamp
	FROM runs
	WHERE monitored_hash = ? AND reference_hash = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{monitoredHash, referenceHash}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

// LatestRuns returns the newest runs, up to n, as full comparisons.
// The result is ordered newest first.
func (rdb *ResultDB) LatestRuns(ctx context.Context, n int) ([]*compare.Comparison, error) {
	summaries, err := rdb.ListRuns(ctx, n)
	if err != nil {
		return nil, err
	}

	comps := make([]*compare.Comparison, 0, len(summaries))
	for _, s := range summaries {
		comp, err := rdb.GetRun(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if comp != nil {
			comps = append(comps, comp)
		}
	}
	return comps, nil
}

// scanRunSummaries reads RunSummary rows from a result set.
func scanRunSummaries(rows *sql.Rows) ([]RunSummary, error) {
	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var status int
		var timestamp string
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.MonitoredPath,
			&s.ReferencePath,
			&s.MonitoredHash,
			&s.ReferenceHash,
			&status,
			&s.Passed,
			&s.Failed,
			&s.Inconclusive,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Status = checks.Status(status)
		s.Timestamp = parseTimestamp(timestamp)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
