package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Format identifies a supported source container.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// DetectFormat maps a file name to a supported format by extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q (use .pdf or .docx)", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// FromPath extracts plain text from a PDF or DOCX file. Paragraphs (DOCX) or
// pages (PDF) are joined by newlines with blank units dropped.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func FromPath(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatPDF:
		f, reader, err := pdf.Open(path)
		if err != nil {
			return "", fmt.Errorf("open pdf %s: %w", path, err)
		}
		defer f.Close()
		return extractPDF(reader)
	default:
		doc, err := docx.ReadDocxFile(path)
		if err != nil {
			return "", fmt.Errorf("open docx %s: %w", path, err)
		}
		defer doc.Close()
		return docxParagraphText(doc.Editable().GetContent())
	}
}

// FromBytes extracts text from an in-memory document; fileName selects the format.
func FromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	format, err := DetectFormat(fileName)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty %s data", format)
	}
	readerAt := bytes.NewReader(data)

	switch format {
	case FormatPDF:
		reader, err := pdf.NewReader(readerAt, int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("read pdf: %w", err)
		}
		return extractPDF(reader)
	default:
		doc, err := docx.ReadDocxFromMemory(readerAt, int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("read docx: %w", err)
		}
		defer doc.Close()
		return docxParagraphText(doc.Editable().GetContent())
	}
}

func extractPDF(reader *pdf.Reader) (string, error) {
	units := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		units = append(units, text)
	}
	return joinUnits(units), nil
}

// docxParagraphText walks document.xml and returns one unit per w:p.
func docxParagraphText(documentXML string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		units   []string
		current strings.Builder
		inText  bool
		inTabs  bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				// w:tabs/w:tab defines a tab stop, not a tab character.
				if !inTabs {
					current.WriteByte('\t')
				}
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				units = append(units, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		units = append(units, current.String())
	}
	return joinUnits(units), nil
}

func joinUnits(units []string) string {
	kept := make([]string, 0, len(units))
	for _, u := range units {
		if strings.TrimSpace(u) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(u, " \t\r\n"))
	}
	return strings.Join(kept, "\n")
}
