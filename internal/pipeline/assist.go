package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"resume-tailor/internal/coerce"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
)

// Score is a 0-100 fit estimate between a resume and a job description.
type Score struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

type scorePayload struct {
	Score  *int   `json:"score"`
	Reason string `json:"reason"`
}

// MatchScore asks the oracle how well the resume fits the job description.
func (s *Service) MatchScore(ctx context.Context, resume model.Resume, jobDescription string) (Score, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Score{}, ErrEmptyJobDescription
	}
	resumeJSON, err := resume.MarshalIndent()
	if err != nil {
		return Score{}, fmt.Errorf("encode resume: %w", err)
	}
	prompt := llm.MatchScorePrompt(string(resumeJSON), jobDescription)
	raw, err := s.generate(ctx, "match_score", prompt)
	if err != nil {
		return Score{}, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(coerce.StripFences(raw))))
	dec.DisallowUnknownFields()
	var payload scorePayload
	if err := dec.Decode(&payload); err != nil {
		return Score{}, &OracleResponseInvalidError{Op: "match_score", Raw: raw, Err: err}
	}
	if payload.Score == nil {
		return Score{}, &OracleResponseInvalidError{Op: "match_score", Raw: raw, Err: errors.New("missing score")}
	}
	if *payload.Score < 0 || *payload.Score > 100 {
		return Score{}, &OracleResponseInvalidError{Op: "match_score", Raw: raw, Err: fmt.Errorf("score %d out of range 0-100", *payload.Score)}
	}
	return Score{Score: *payload.Score, Reason: strings.TrimSpace(payload.Reason)}, nil
}

// Answer drafts an application-form answer using only the resume.
func (s *Service) Answer(ctx context.Context, resume model.Resume, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	resumeJSON, err := resume.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("encode resume: %w", err)
	}
	raw, err := s.generate(ctx, "answer", llm.AnswerPrompt(string(resumeJSON), strings.TrimSpace(question)))
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", &OracleResponseInvalidError{Op: "answer", Raw: raw, Err: errors.New("empty answer")}
	}
	return answer, nil
}

func (s *Service) generate(ctx context.Context, op, prompt string) (string, error) {
	fields := map[string]any{
		"run_id":      uuid.NewString(),
		"op":          op,
		"prompt_hash": llm.PromptHash(prompt),
	}
	raw, err := s.Oracle.Generate(ctx, prompt)
	if err != nil {
		fields["error"] = err
		telemetry.Error("oracle call failed", fields)
		return "", oracleFailure(op, err)
	}
	telemetry.Info("oracle call complete", fields)
	return raw, nil
}
