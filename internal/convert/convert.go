// Package convert turns rendered .docx files into PDFs with LibreOffice.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"resume-tailor/internal/shared/telemetry"
)

const defaultBinary = "soffice"

var ErrNoOutput = errors.New("converter produced no pdf")

// Converter turns a document into a PDF in outDir and returns the PDF path.
type Converter interface {
	Convert(ctx context.Context, docxPath, outDir string) (string, error)
}

var execCommand = exec.CommandContext

// Soffice converts through a headless LibreOffice binary.
type Soffice struct {
	Binary string
}

// Convert runs soffice --headless --convert-to pdf and verifies the result.
// An empty outDir writes next to the source document.
func (s Soffice) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	bin := strings.TrimSpace(s.Binary)
	if bin == "" {
		bin = defaultBinary
	}
	if _, err := os.Stat(docxPath); err != nil {
		return "", fmt.Errorf("convert source: %w", err)
	}
	if strings.TrimSpace(outDir) == "" {
		outDir = filepath.Dir(docxPath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create pdf dir: %w", err)
	}

	started := time.Now()
	cmd := execCommand(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s convert %s: %w: %s", bin, filepath.Base(docxPath), err, strings.TrimSpace(string(output)))
	}

	pdfPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrNoOutput, pdfPath, strings.TrimSpace(string(output)))
	}
	pages, err := VerifyPDF(pdfPath)
	if err != nil {
		return "", err
	}

	telemetry.Info("pdf converted", map[string]any{
		"source":      docxPath,
		"pdf":         pdfPath,
		"pages":       pages,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return pdfPath, nil
}

// VerifyPDF parses and validates a PDF and returns its page count.
func VerifyPDF(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read %s: %w", filepath.Base(path), err)
	}
	if ctx.PageCount <= 0 {
		return 0, fmt.Errorf("pdf %s has no pages", filepath.Base(path))
	}
	return ctx.PageCount, nil
}

var _ Converter = Soffice{}
