// Package applog records submitted job applications.
package applog

import (
	"context"
	"strings"
	"time"
)

const (
	StatusApplied = "Applied"
	// DateLayout is the day format written to the log.
	DateLayout = "02 Jan 2006"
)

// Entry is one logged application.
type Entry struct {
	Date    time.Time `json:"date"`
	Company string    `json:"company"`
	Role    string    `json:"role"`
	Status  string    `json:"status"`
}

// Recorder appends application rows and lists them back. Record never
// deduplicates: two calls write two rows.
type Recorder interface {
	Record(ctx context.Context, company, role string) error
	Entries(ctx context.Context) ([]Entry, error)
}

func today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clean(value string) string {
	return strings.TrimSpace(value)
}
