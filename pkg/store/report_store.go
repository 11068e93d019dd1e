// Package store keeps a history of validation reports in SQLite so repeated runs
// over the same artifact can be compared by digest.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no report matches.
var ErrNotFound = errors.New("report not found")

// timeFormat is fixed-width so created_at sorts correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one stored validation report.
type Record struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"` // "skill" | "solution" | "connector"
	Subject   string          `json:"subject"`
	Digest    string          `json:"digest"`
	Valid     bool            `json:"valid"`
	Errors    int             `json:"errors"`
	Warnings  int             `json:"warnings"`
	CreatedAt time.Time       `json:"created_at"`
	Report    json.RawMessage `json:"report,omitempty"`
}

// ReportStore persists Records.
type ReportStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and prepares the schema.
func Open(path string) (*ReportStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	s, err := NewReportStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewReportStore wraps an open database and migrates it.
func NewReportStore(db *sql.DB) (*ReportStore, error) {
	s := &ReportStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

func (s *ReportStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        subject TEXT NOT NULL DEFAULT '',
        digest TEXT NOT NULL,
        valid INTEGER NOT NULL,
        errors INTEGER NOT NULL DEFAULT 0,
        warnings INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL,
        report JSON
    );
    CREATE INDEX IF NOT EXISTS reports_digest ON reports (digest);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close closes the underlying database.
func (s *ReportStore) Close() error {
	return s.db.Close()
}

// Store inserts r, assigning an ID and timestamp when unset.
func (s *ReportStore) Store(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO reports (
		id, kind, subject, digest, valid, errors, warnings, created_at, report
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var report sql.NullString
	if len(r.Report) > 0 {
		report = sql.NullString{String: string(r.Report), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Kind, r.Subject, r.Digest, r.Valid, r.Errors, r.Warnings, r.CreatedAt.UTC().Format(timeFormat), report,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first, without report bodies.
func (s *ReportStore) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `
        SELECT id, kind, subject, digest, valid, errors, warnings, created_at, NULL
        FROM reports
        ORDER BY created_at DESC, id
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByDigest returns the most recent record with the given digest.
func (s *ReportStore) GetByDigest(ctx context.Context, digest string) (*Record, error) {
	query := `
        SELECT id, kind, subject, digest, valid, errors, warnings, created_at, report
        FROM reports
        WHERE digest = ?
        ORDER BY created_at DESC
        LIMIT 1
    `
	r, err := scanRecord(s.db.QueryRowContext(ctx, query, digest))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		r         Record
		createdAt string
		report    sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Kind, &r.Subject, &r.Digest, &r.Valid, &r.Errors, &r.Warnings, &createdAt, &report); err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	if report.Valid && report.String != "" {
		r.Report = json.RawMessage(report.String)
	}
	return &r, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
