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

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shiori-dev/pdfa11ycrawl/internal/model"
)

// ErrRunNotFound is returned when a requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "pdfa11ycrawl.db"

// ScanDB provides SQLite-based storage for crawl runs and their document
// records. It manages connection pooling and provides CRUD operations.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. Cross-run queries ("how did this site trend over
// time") are the whole point of keeping history.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
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

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
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

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// Path returns the location of the database file.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Runs store one row per crawl, with summary counts and the full
	-- report JSON for lossless retrieval.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_visited INTEGER NOT NULL,
		pdf_total INTEGER NOT NULL,
		text_based INTEGER NOT NULL,
		image_only INTEGER NOT NULL,
		unknown_or_failed INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_start_url ON runs(start_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Documents store one row per analyzed PDF, for queries that don't
	-- want to unpack report JSON.
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		pdf_url TEXT NOT NULL,
		source_page TEXT NOT NULL,
		http_status INTEGER,
		content_type TEXT,
		bytes_downloaded INTEGER,
		sha256 TEXT,
		has_text_layer INTEGER,
		font_object_count INTEGER,
		conformance_passed INTEGER,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(pdf_url);
	CREATE INDEX IF NOT EXISTS idx_documents_sha ON documents(sha256);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlReport persists a finished run and its document records.
// It returns the new run's ID.
func (sdb *ScanDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (start_url, started_at, duration_ms, pages_visited,
			pdf_total, text_based, image_only, unknown_or_failed, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.StartURL,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
		report.PagesVisited,
		summary.Total,
		summary.TextBased,
		summary.ImageOnly,
		summary.Unknown,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, r := range report.Results {
		if err := insertDocument(ctx, tx, runID, r); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// insertDocument writes one document record under the given run.
func insertDocument(ctx context.Context, tx *sql.Tx, runID int64, r *model.DocumentResult) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (run_id, pdf_url, source_page, http_status,
			content_type, bytes_downloaded, sha256, has_text_layer,
			font_object_count, conformance_passed, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		r.PDFURL,
		r.SourcePage,
		nullableInt(r.HTTPStatus),
		nullableString(r.ContentType),
		nullableInt64(r.BytesDownloaded),
		nullableString(r.SHA256),
		tristateColumn(r.HasTextLayer),
		nullableInt(r.FontObjectCount),
		tristateColumn(r.ConformancePassed),
		nullableString(r.JoinedNotes()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", r.PDFURL, err)
	}
	return nil
}

// RunMetadata is a lightweight view of a stored run for listings.
type RunMetadata struct {
	// ID is the run's primary key.
	ID int64

	// StartURL is the URL the crawl was seeded with.
	StartURL string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// Total, TextBased, ImageOnly, Unknown are the summary counts.
	Total     int
	TextBased int
	ImageOnly int
	Unknown   int
}

// ListRuns returns stored runs, most recent first, capped at limit.
// A non-positive limit returns all runs.
func (sdb *ScanDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
		SELECT id, start_url, started_at, pages_visited,
			pdf_total, text_based, image_only, unknown_or_failed
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-side close

	var runs []RunMetadata
	for rows.Next() {
		var m RunMetadata
		var startedAt string
		if err := rows.Scan(&m.ID, &m.StartURL, &startedAt, &m.PagesVisited,
			&m.Total, &m.TextBased, &m.ImageOnly, &m.Unknown); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		m.StartedAt = parseTimestamp(startedAt)
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// GetRun retrieves the full report of a stored run by ID.
func (sdb *ScanDB) GetRun(ctx context.Context, id int64) (*model.CrawlReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx,
		"SELECT report_json FROM runs WHERE id = ?", id,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to decode run %d: %w", id, err)
	}
	return &report, nil
}

// GetLatestRun retrieves the most recent run for a start URL.
func (sdb *ScanDB) GetLatestRun(ctx context.Context, startURL string) (*model.CrawlReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, `
		SELECT report_json FROM runs WHERE start_url = ?
		ORDER BY started_at DESC, id DESC LIMIT 1`, startURL,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run for %s: %w", startURL, err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to decode latest run for %s: %w", startURL, err)
	}
	return &report, nil
}

// nullableInt maps a nil pointer to SQL NULL.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableInt64 maps a nil pointer to SQL NULL.
func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// tristateColumn stores a tri-state as 1, 0, or NULL.
func tristateColumn(t model.Tristate) any {
	if v, known := t.Bool(); known {
		if v {
			return 1
		}
		return 0
	}
	return nil
}

// parseTimestamp parses the stored RFC 3339 timestamp, falling back to the
// zero time on malformed input.
func parseTimestamp(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts
	}
	return time.Time{}
}
