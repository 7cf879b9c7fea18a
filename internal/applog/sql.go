package applog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/shared/telemetry"
)

const (
	dayLayout     = "2006-01-02"
	createdLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLLog keeps the log in the applications table. The same queries run on
// Postgres (pgx) and SQLite (modernc); the schema comes from goose migrations.
type SQLLog struct {
	DB      *sql.DB
	Backend string
	Now     func() time.Time
	NewID   func() string
}

// NewSQLLog returns a SQL recorder. backend is only used in log lines.
func NewSQLLog(db *sql.DB, backend string) *SQLLog {
	return &SQLLog{DB: db, Backend: backend, Now: time.Now, NewID: uuid.NewString}
}

// Record inserts one application row.
func (l *SQLLog) Record(ctx context.Context, company, role string) error {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	newID := uuid.NewString
	if l.NewID != nil {
		newID = l.NewID
	}
	id := newID()

	_, err := l.DB.ExecContext(ctx, `
		INSERT INTO applications (id, applied_on, company, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, today(now).Format(dayLayout), clean(company), clean(role), StatusApplied, now().UTC().Format(createdLayout))
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}

	telemetry.Info("application recorded", map[string]any{
		"backend": l.Backend,
		"id":      id,
		"company": clean(company),
		"role":    clean(role),
	})
	return nil
}

// Entries lists applications in the order they were recorded.
func (l *SQLLog) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.DB.QueryContext(ctx, `
		SELECT applied_on, company, role, status
		FROM applications
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			day string
			e   Entry
		)
		if err := rows.Scan(&day, &e.Company, &e.Role, &e.Status); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		e.Date, err = time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse applied_on %q: %w", day, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ Recorder = (*SQLLog)(nil)
