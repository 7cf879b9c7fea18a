package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStubOracleReplaysInOrder(t *testing.T) {
	stub := NewStubOracle("first", "second")
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		got, err := stub.Generate(ctx, "prompt-"+want)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if got != want {
			t.Fatalf("Generate = %q, want %q", got, want)
		}
	}
	if _, err := stub.Generate(ctx, "again"); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("expected ErrNoResponse, got %v", err)
	}
	if stub.LastPrompt() != "again" || len(stub.Prompts) != 3 {
		t.Fatalf("unexpected recorded prompts %v", stub.Prompts)
	}
}

func TestStubOracleError(t *testing.T) {
	boom := errors.New("boom")
	stub := &StubOracle{Err: boom}
	if _, err := stub.Generate(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestPromptsSubstituteAllTokens(t *testing.T) {
	prompts := map[string]string{
		"extract": ExtractionPrompt("RESUME BODY"),
		"tailor": TailorPrompt(`{"Skills":[]}`, "JD BODY", TailorLimits{
			WorkBullets: 4, ProjectBullets: 3, MinWords: 15, MaxWords: 25, MaxSkills: 20,
		}),
		"score":  MatchScorePrompt(`{}`, "JD BODY"),
		"answer": AnswerPrompt(`{}`, "Why us?"),
	}
	for name, p := range prompts {
		if strings.Contains(p, "{{") {
			t.Fatalf("%s prompt has unresolved token:\n%s", name, p)
		}
	}

	tailor := prompts["tailor"]
	for _, want := range []string{"exactly 4 bullet points", "exactly 3 bullet points", "between 15 and 25 words", "At most 20 skills", "JD BODY"} {
		if !strings.Contains(tailor, want) {
			t.Fatalf("tailor prompt missing %q", want)
		}
	}
	if !strings.Contains(prompts["extract"], "RESUME BODY") || !strings.Contains(prompts["extract"], `"Work Experience"`) {
		t.Fatalf("extraction prompt missing schema or resume text")
	}
	if !strings.Contains(prompts["answer"], "Question: Why us?") {
		t.Fatalf("answer prompt missing question")
	}
}

func TestPromptHashStable(t *testing.T) {
	if PromptHash("a") != PromptHash("a") {
		t.Fatal("expected deterministic hash")
	}
	if PromptHash("a") == PromptHash("b") {
		t.Fatal("expected hash to change with input")
	}
	if len(PromptHash("a")) != 16 {
		t.Fatalf("unexpected hash length %d", len(PromptHash("a")))
	}
}
