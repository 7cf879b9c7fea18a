package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var schemaJSON string

// ErrInvalidJSON is returned when the payload is not JSON at all.
var ErrInvalidJSON = errors.New("resume payload is not valid JSON")

// SchemaError lists every schema violation found in a payload.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "resume schema validation failed: " + strings.Join(e.Problems, "; ")
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// SchemaText returns the embedded JSON schema document.
func SchemaText() string {
	return schemaJSON
}

// Validate checks a raw JSON payload against the resume schema.
func Validate(raw []byte) error {
	if !json.Valid(raw) {
		return ErrInvalidJSON
	}
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile resume schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate resume schema: %w", err)
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &SchemaError{Problems: problems}
}

// Parse validates raw JSON against the schema and decodes it into a normalized Resume.
func Parse(raw []byte) (Resume, error) {
	if err := Validate(raw); err != nil {
		return Resume{}, err
	}
	var r Resume
	if err := json.Unmarshal(raw, &r); err != nil {
		return Resume{}, fmt.Errorf("decode resume: %w", err)
	}
	return r.Normalize(), nil
}
