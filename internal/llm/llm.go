package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// Oracle is an opaque text-completion service: one prompt in, free-form text out.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f OracleFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrNoResponse is returned by StubOracle when its fixtures are exhausted.
var ErrNoResponse = errors.New("stub oracle has no response queued")

// StubOracle replays queued fixture responses in order and records prompts.
type StubOracle struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
}

// NewStubOracle returns a stub that replays responses.
func NewStubOracle(responses ...string) *StubOracle {
	return &StubOracle{Responses: responses}
}

// Generate returns the next queued response, or Err when set.
func (s *StubOracle) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", ErrNoResponse
	}
	resp := s.Responses[0]
	s.Responses = s.Responses[1:]
	return resp, nil
}

// LastPrompt returns the most recent prompt, or "".
func (s *StubOracle) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Prompts) == 0 {
		return ""
	}
	return s.Prompts[len(s.Prompts)-1]
}

// PromptHash returns a short stable fingerprint for log correlation.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}
