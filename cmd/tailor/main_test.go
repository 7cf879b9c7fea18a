package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/model"
	"resume-tailor/resume/render"
)

func TestMain(m *testing.M) {
	telemetry.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type harness struct {
	dir string
	cfg config.Config
}

func newHarness(t *testing.T, stubFiles ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	responses := make([]string, 0, len(stubFiles))
	for _, name := range stubFiles {
		responses = append(responses, filepath.Join("testdata", name))
	}
	return &harness{
		dir: dir,
		cfg: config.Config{
			Env:               "dev",
			LLMProvider:       "gemini",
			ArtifactStoreType: "local",
			ArtifactDir:       filepath.Join(dir, "artifacts"),
			ActiveResumeKey:   "resume_fixed.json",
			TailoredResumeKey: "tailored_resume.json",
			OutputDir:         filepath.Join(dir, "Resumes"),
			AppLogBackend:     "xlsx",
			AppLogPath:        filepath.Join(dir, "applications.xlsx"),
			StubResponses:     responses,
		},
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := newCLI(func() config.Config { return h.cfg }, strings.NewReader(stdin))
	root := c.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	if cerr := c.close(); cerr != nil {
		t.Fatalf("close: %v", cerr)
	}
	return out.String(), err
}

func (h *harness) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func (h *harness) sourceResume(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "original.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	r, err := model.Parse(raw)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	path := filepath.Join(h.dir, "resume.docx")
	if err := render.Render(r, path); err != nil {
		t.Fatalf("render source: %v", err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	h := newHarness(t, "original.json", "tailored.json")
	source := h.sourceResume(t)
	jd := h.writeFile(t, "posting.txt", "Globex is hiring a Go engineer.\n\n\n\nPostgreSQL and Kubernetes required.")

	out, err := h.run(t, "", "--dry-run", "run", source, "--jd", jd, "--company", "Globex Corp", "--role", "Backend Engineer")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{"saved resume_fixed.json", "saved tailored_resume.json", "Globex_Corp_Backend_Engineer.docx", "logged Globex Corp / Backend Engineer as Applied"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "violation:") {
		t.Fatalf("expected a conforming tailored resume, got:\n%s", out)
	}

	docx := filepath.Join(h.cfg.OutputDir, "Globex_Corp_Backend_Engineer.docx")
	data, err := os.ReadFile(docx)
	if err != nil {
		t.Fatalf("read rendered docx: %v", err)
	}
	if err := render.Validate(data); err != nil {
		t.Fatalf("rendered docx invalid: %v", err)
	}
	for _, key := range []string{"resume_fixed.json", "tailored_resume.json"} {
		if _, err := os.Stat(filepath.Join(h.cfg.ArtifactDir, key)); err != nil {
			t.Fatalf("expected artifact %s: %v", key, err)
		}
	}

	out, err = h.run(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Globex Corp") || !strings.Contains(out, "Backend Engineer") {
		t.Fatalf("unexpected history:\n%s", out)
	}
}

func TestExtractWarnsOnInvalidJSON(t *testing.T) {
	h := newHarness(t)
	reply := h.writeFile(t, "reply.txt", "Sorry, I cannot help with that.")
	h.cfg.StubResponses = []string{reply}

	out, err := h.run(t, "", "--dry-run", "extract", h.sourceResume(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(out, "warning: oracle output is not valid JSON") {
		t.Fatalf("expected degraded warning, got:\n%s", out)
	}
	saved, err := os.ReadFile(filepath.Join(h.cfg.ArtifactDir, "resume_fixed.json"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(saved) != "Sorry, I cannot help with that." {
		t.Fatalf("unexpected artifact %q", saved)
	}
}

func TestTailorReadsJobDescriptionFromStdin(t *testing.T) {
	h := newHarness(t, "original.json", "tailored.json")
	if _, err := h.run(t, "", "--dry-run", "extract", h.sourceResume(t)); err != nil {
		t.Fatalf("extract: %v", err)
	}
	// Each invocation builds a fresh stub, so the tailor run replays from the start.
	h.cfg.StubResponses = []string{filepath.Join("testdata", "tailored.json")}

	out, err := h.run(t, "Go engineer wanted", "--dry-run", "tailor", "--jd", "-")
	if err != nil {
		t.Fatalf("tailor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "saved tailored_resume.json") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestTailorWithoutActiveResume(t *testing.T) {
	h := newHarness(t, "tailored.json")
	_, err := h.run(t, "Go engineer wanted", "--dry-run", "tailor", "--jd", "-")
	if err == nil || !strings.Contains(err.Error(), "no active resume") {
		t.Fatalf("expected missing active resume error, got %v", err)
	}
}

func TestRenderWithoutTailoredResume(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "render", "--company", "Acme", "--role", "Engineer")
	if err == nil {
		t.Fatal("expected render to fail without a tailored resume")
	}
	if _, statErr := os.Stat(h.cfg.AppLogPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no application to be logged, stat err=%v", statErr)
	}
}

func TestAppliedAndHistoryJSON(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 2; i++ {
		if _, err := h.run(t, "", "applied", "--company", "Acme", "--role", "Engineer"); err != nil {
			t.Fatalf("applied: %v", err)
		}
	}
	out, err := h.run(t, "", "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Count(out, `"company": "Acme"`) != 2 {
		t.Fatalf("expected two rows, got:\n%s", out)
	}
}

func TestAppliedLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(io.Discard) })

	h := newHarness(t)
	if _, err := h.run(t, "", "applied", "--company", "Acme", "--role", "Engineer"); err != nil {
		t.Fatalf("applied: %v", err)
	}
	if n := strings.Count(buf.String(), `"application recorded"`); n != 1 {
		t.Fatalf("expected one application log line, got %d:\n%s", n, buf.String())
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "no applications logged") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestScoreAndAsk(t *testing.T) {
	h := newHarness(t, "original.json")
	if _, err := h.run(t, "", "--dry-run", "extract", h.sourceResume(t)); err != nil {
		t.Fatalf("extract: %v", err)
	}

	h.cfg.StubResponses = []string{h.writeFile(t, "score.txt", "```json\n{\"score\": 72, \"reason\": \"Strong Go match\"}\n```")}
	jd := h.writeFile(t, "posting.txt", "Go engineer wanted")
	out, err := h.run(t, "", "--dry-run", "score", "--jd", jd)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, `"score": 72`) {
		t.Fatalf("unexpected score output:\n%s", out)
	}

	h.cfg.StubResponses = []string{h.writeFile(t, "answer.txt", "  I have five years of Go.  ")}
	out, err = h.run(t, "", "--dry-run", "ask", "How", "much", "Go?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "I have five years of Go.\n" {
		t.Fatalf("unexpected answer %q", out)
	}
}

func TestRequiredFlags(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "", "applied", "--company", "Acme"); err == nil {
		t.Fatal("expected missing --role to fail")
	}
	if _, err := h.run(t, "", "--dry-run", "tailor"); err == nil {
		t.Fatal("expected missing --jd to fail")
	}
}

func TestOracleRequiresKeyWithoutDryRun(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "extract", h.sourceResume(t))
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
