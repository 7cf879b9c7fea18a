// Package pipeline runs the extraction and tailoring steps against an
// oracle and persists their artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-tailor/internal/coerce"
	"resume-tailor/internal/extract"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/contract"
	"resume-tailor/resume/model"
)

const (
	DefaultActiveKey   = "resume_fixed.json"
	DefaultTailoredKey = "tailored_resume.json"

	jsonContentType = "application/json"
)

// Keys names the two artifacts the pipeline owns.
type Keys struct {
	Active   string
	Tailored string
}

func (k Keys) withDefaults() Keys {
	if strings.TrimSpace(k.Active) == "" {
		k.Active = DefaultActiveKey
	}
	if strings.TrimSpace(k.Tailored) == "" {
		k.Tailored = DefaultTailoredKey
	}
	return k
}

// Service wires the oracle, the artifact store and the tailoring rules.
type Service struct {
	Oracle llm.Oracle
	Store  object.ObjectStore
	Keys   Keys
	Rules  contract.Rules
}

// ExtractResult describes one extraction run. Resume is set only when Text
// is valid JSON that also satisfies the resume schema; SchemaErr explains why
// it is not.
type ExtractResult struct {
	Text      string
	Valid     bool
	Resume    model.Resume
	SchemaErr error
	Key       string
}

// TailorResult describes one tailoring run. Repaired lists the violations
// fixed without a model call; Violations lists what is still wrong.
type TailorResult struct {
	Resume     model.Resume
	Violations []contract.Violation
	Repaired   []contract.Violation
	Key        string
}

// Extract reads a resume document and converts it to the structured record.
func (s *Service) Extract(ctx context.Context, path string) (ExtractResult, error) {
	text, err := extract.FromPath(ctx, path)
	if err != nil {
		return ExtractResult{}, err
	}
	return s.ExtractText(ctx, text)
}

// ExtractText runs the oracle step of Extract on already-extracted text.
// Output that is not JSON is still persisted and reported with Valid=false.
func (s *Service) ExtractText(ctx context.Context, text string) (ExtractResult, error) {
	keys := s.Keys.withDefaults()
	prompt := llm.ExtractionPrompt(text)
	fields := map[string]any{
		"run_id":      uuid.NewString(),
		"op":          "extract",
		"prompt_hash": llm.PromptHash(prompt),
		"text_chars":  len(text),
	}
	started := time.Now()

	raw, err := s.Oracle.Generate(ctx, prompt)
	if err != nil {
		fields["error"] = err
		telemetry.Error("oracle call failed", fields)
		return ExtractResult{}, oracleFailure("extract", err)
	}

	coerced := coerce.Coerce(raw)
	result := ExtractResult{Text: coerced.Text, Valid: coerced.Valid, Key: keys.Active}
	if coerced.Valid {
		parsed, perr := model.Parse([]byte(coerced.Text))
		if perr != nil {
			result.SchemaErr = perr
		} else {
			result.Resume = parsed
		}
	}

	if err := object.WriteBytes(ctx, s.Store, keys.Active, jsonContentType, []byte(result.Text)); err != nil {
		return ExtractResult{}, fmt.Errorf("persist active resume: %w", err)
	}

	fields["key"] = keys.Active
	fields["valid"] = result.Valid
	fields["duration_ms"] = time.Since(started).Milliseconds()
	switch {
	case !result.Valid:
		telemetry.Warn("extraction output is not valid json", fields)
	case result.SchemaErr != nil:
		fields["error"] = result.SchemaErr
		telemetry.Warn("extraction output does not match resume schema", fields)
	default:
		telemetry.Info("extraction complete", fields)
	}
	return result, nil
}

// Tailor rewrites the resume for the job description. The input record is
// not modified. Unusable oracle output fails the call and nothing is persisted.
func (s *Service) Tailor(ctx context.Context, resume model.Resume, jobDescription string) (TailorResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return TailorResult{}, ErrEmptyJobDescription
	}
	keys := s.Keys.withDefaults()
	rules := s.Rules.WithDefaults()

	input := resume.Normalize()
	resumeJSON, err := input.MarshalIndent()
	if err != nil {
		return TailorResult{}, fmt.Errorf("encode resume: %w", err)
	}
	prompt := llm.TailorPrompt(string(resumeJSON), jobDescription, tailorLimits(rules))
	fields := map[string]any{
		"run_id":      uuid.NewString(),
		"op":          "tailor",
		"prompt_hash": llm.PromptHash(prompt),
	}
	started := time.Now()

	raw, err := s.Oracle.Generate(ctx, prompt)
	if err != nil {
		fields["error"] = err
		telemetry.Error("oracle call failed", fields)
		return TailorResult{}, oracleFailure("tailor", err)
	}

	tailored, err := model.Parse([]byte(coerce.StripFences(raw)))
	if err != nil {
		fields["error"] = err
		telemetry.Error("tailored resume rejected", fields)
		return TailorResult{}, &OracleResponseInvalidError{Op: "tailor", Raw: raw, Err: err}
	}

	fixed, repaired := contract.Repair(input, tailored, rules)
	violations := contract.Check(input, fixed, rules)

	out, err := fixed.MarshalIndent()
	if err != nil {
		return TailorResult{}, fmt.Errorf("encode tailored resume: %w", err)
	}
	if err := object.WriteBytes(ctx, s.Store, keys.Tailored, jsonContentType, out); err != nil {
		return TailorResult{}, fmt.Errorf("persist tailored resume: %w", err)
	}

	for _, v := range violations {
		telemetry.Warn("tailored resume violation", map[string]any{
			"run_id":  fields["run_id"],
			"kind":    v.Kind,
			"section": v.Section,
			"detail":  v.Message,
		})
	}
	fields["key"] = keys.Tailored
	fields["repaired"] = len(repaired)
	fields["violations"] = len(violations)
	fields["duration_ms"] = time.Since(started).Milliseconds()
	telemetry.Info("tailoring complete", fields)

	return TailorResult{Resume: fixed, Violations: violations, Repaired: repaired, Key: keys.Tailored}, nil
}

// Active loads the persisted active resume.
func (s *Service) Active(ctx context.Context) (model.Resume, error) {
	return s.load(ctx, s.Keys.withDefaults().Active, ErrNoActiveResume)
}

// Tailored loads the persisted tailored resume.
func (s *Service) Tailored(ctx context.Context) (model.Resume, error) {
	return s.load(ctx, s.Keys.withDefaults().Tailored, ErrNoTailoredResume)
}

func (s *Service) load(ctx context.Context, key string, missing error) (model.Resume, error) {
	data, err := object.ReadBytes(ctx, s.Store, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return model.Resume{}, fmt.Errorf("%w: %s", missing, key)
		}
		return model.Resume{}, err
	}
	r, err := model.Parse(data)
	if err != nil {
		return model.Resume{}, fmt.Errorf("load %s: %w", key, err)
	}
	return r, nil
}

func tailorLimits(r contract.Rules) llm.TailorLimits {
	return llm.TailorLimits{
		WorkBullets:    r.WorkBullets,
		ProjectBullets: r.ProjectBullets,
		MinWords:       r.MinWords,
		MaxWords:       r.MaxWords,
		MaxSkills:      r.MaxSkills,
	}
}
