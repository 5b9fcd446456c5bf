// Package history persists audit reports in an embedded SQLite database so
// later runs can detect regressions. The store is append-only: one row per
// audit, indexed by URL and timestamp, with the full report serialized
// alongside the compact score columns.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/contextlint/contextlint/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS audits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    overall_score REAL NOT NULL,
    robots_score REAL NOT NULL,
    llms_txt_score REAL NOT NULL,
    schema_org_score REAL NOT NULL,
    content_score REAL NOT NULL,
    report_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audits_url ON audits (url);
CREATE INDEX IF NOT EXISTS idx_audits_timestamp ON audits (timestamp);
`

// DefaultPath returns the production database location under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".context-cli", "history.db"), nil
}

// Store is a SQLite-backed audit history. Writes are serialized under a
// mutex so concurrent saves produce distinct, monotonically increasing
// IDs. Close is idempotent.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

// Open opens (creating if needed) the history database at path. Parent
// directories are created on first use.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Save inserts a report and returns its row ID. The timestamp is assigned
// here, at insert time, in UTC ISO-8601.
func (s *Store) Save(report *types.AuditReport) (int64, error) {
	blob, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("serialize report: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("history store is closed")
	}

	res, err := s.db.Exec(
		`INSERT INTO audits
		     (url, timestamp, overall_score, robots_score, llms_txt_score,
		      schema_org_score, content_score, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.URL, now, report.OverallScore,
		report.Robots.Score, report.LlmsTxt.Score,
		report.SchemaOrg.Score, report.Content.Score,
		string(blob),
	)
	if err != nil {
		return 0, fmt.Errorf("insert audit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read insert id: %w", err)
	}
	return id, nil
}

// ListEntries returns the most recent entries for a URL, newest first,
// capped at limit.
func (s *Store) ListEntries(url string, limit int) ([]types.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, url, timestamp, overall_score, robots_score,
		        llms_txt_score, schema_org_score, content_score
		 FROM audits WHERE url = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`,
		url, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(&e.ID, &e.URL, &e.Timestamp, &e.OverallScore,
			&e.RobotsScore, &e.LlmsTxtScore, &e.SchemaOrgScore, &e.ContentScore); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetReport rehydrates the full report for an entry ID, or nil when the
// ID does not exist.
func (s *Store) GetReport(id int64) (*types.AuditReport, error) {
	var blob string
	err := s.db.QueryRow(`SELECT report_json FROM audits WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report types.AuditReport
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("deserialize report: %w", err)
	}
	return &report, nil
}

// GetLatest returns the most recent entry for a URL, or nil when the URL
// has no history.
func (s *Store) GetLatest(url string) (*types.HistoryEntry, error) {
	entries, err := s.ListEntries(url, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// GetLatestReport returns the most recent full report for a URL, or nil.
func (s *Store) GetLatestReport(url string) (*types.AuditReport, error) {
	latest, err := s.GetLatest(url)
	if err != nil || latest == nil {
		return nil, err
	}
	return s.GetReport(latest.ID)
}

// DeleteURL removes every entry for a URL and returns how many rows went.
func (s *Store) DeleteURL(url string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("history store is closed")
	}

	res, err := s.db.Exec(`DELETE FROM audits WHERE url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	return res.RowsAffected()
}
