// Package jobdesc loads job descriptions from files, stdin or pasted HTML.
package jobdesc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

var ErrEmpty = errors.New("job description is empty")

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Load reads a job description from path, or from stdin when path is "-".
func Load(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if strings.TrimSpace(path) == Stdin {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		return normalizeHTML(string(data))
	}
	return Normalize(string(data))
}

// Normalize converts HTML to Markdown when the text looks like markup, then
// collapses whitespace runs and trims the result.
func Normalize(text string) (string, error) {
	if looksLikeHTML(text) {
		return normalizeHTML(text)
	}
	return finish(text)
}

func normalizeHTML(html string) (string, error) {
	md, err := mdConverter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert job description html: %w", err)
	}
	return finish(md)
}

func finish(text string) (string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	out := strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
	if out == "" {
		return "", ErrEmpty
	}
	return out, nil
}

func looksLikeHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<")
}
