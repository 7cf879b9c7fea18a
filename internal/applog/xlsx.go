package applog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"resume-tailor/internal/shared/telemetry"
)

// SheetName is the worksheet that holds the log.
const SheetName = "Applications"

var headerRow = []interface{}{"Date", "Company", "Role", "Status"}

// Workbook keeps the log in an .xlsx file. Each write saves to a temp file in
// the same directory and renames it over the target.
type Workbook struct {
	Path string
	Now  func() time.Time
}

// NewWorkbook returns a Workbook recorder for path.
func NewWorkbook(path string) *Workbook {
	return &Workbook{Path: path, Now: time.Now}
}

// Record appends (today, company, role, "Applied"), creating the workbook
// and header row on first use.
func (w *Workbook) Record(ctx context.Context, company, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return fmt.Errorf("read %s: %w", SheetName, err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	date := today(w.Now)
	row := []interface{}{date.Format(DateLayout), clean(company), clean(role), StatusApplied}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := w.save(f); err != nil {
		return err
	}

	telemetry.Info("application recorded", map[string]any{
		"backend": "xlsx",
		"path":    w.Path,
		"company": clean(company),
		"role":    clean(role),
		"row":     len(rows) + 1,
	})
	return nil
}

// Entries returns the logged rows without the header. A missing workbook
// yields no entries.
func (w *Workbook) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SheetName, err)
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cols := make([]string, 4)
		copy(cols, row)
		date, _ := time.Parse(DateLayout, cols[0])
		entries = append(entries, Entry{Date: date, Company: cols[1], Role: cols[2], Status: cols[3]})
	}
	return entries, nil
}

func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.Path)
	switch {
	case err == nil:
		idx, err := f.GetSheetIndex(SheetName)
		if err != nil {
			f.Close()
			return nil, err
		}
		if idx == -1 {
			if _, err := f.NewSheet(SheetName); err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
				f.Close()
				return nil, err
			}
		}
		return f, nil
	case errors.Is(err, fs.ErrNotExist):
		f = excelize.NewFile()
		if err := f.SetSheetName("Sheet1", SheetName); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("open workbook: %w", err)
	}
}

func (w *Workbook) save(f *excelize.File) error {
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "applications-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmpName, w.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

var _ Recorder = (*Workbook)(nil)
