package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "APPLOG_BACKEND", "APPLOG_PATH", "ORACLE_TIMEOUT_SECONDS", "OUTPUT_DIR", "ARTIFACT_STORE"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.AppLogBackend != "xlsx" || cfg.AppLogPath != "applications.xlsx" {
		t.Fatalf("unexpected applog defaults %q %q", cfg.AppLogBackend, cfg.AppLogPath)
	}
	if cfg.OracleTimeout != 120*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.OracleTimeout)
	}
	if cfg.ActiveResumeKey != "resume_fixed.json" || cfg.TailoredResumeKey != "tailored_resume.json" {
		t.Fatalf("unexpected artifact keys %q %q", cfg.ActiveResumeKey, cfg.TailoredResumeKey)
	}
	if cfg.ArtifactStoreType != "local" || cfg.OutputDir != "Resumes" {
		t.Fatalf("unexpected store/output %q %q", cfg.ArtifactStoreType, cfg.OutputDir)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("APPLOG_BACKEND", "sqlite3")
	t.Setenv("APPLOG_PATH", "")
	t.Setenv("ORACLE_TIMEOUT_SECONDS", "30")
	t.Setenv("ARTIFACT_STORE", "S3")

	cfg := Load()
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai, got %q", cfg.LLMProvider)
	}
	if cfg.AppLogBackend != "sqlite" || cfg.AppLogPath != "applications.db" {
		t.Fatalf("unexpected applog %q %q", cfg.AppLogBackend, cfg.AppLogPath)
	}
	if cfg.OracleTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.OracleTimeout)
	}
	if cfg.ArtifactStoreType != "s3" {
		t.Fatalf("unexpected store %q", cfg.ArtifactStoreType)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OUTPUT_DIR=from-file\nSOFFICE_BIN=\"/opt/soffice\"\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("OUTPUT_DIR", "from-env")
	t.Setenv("SOFFICE_BIN", "")
	os.Unsetenv("SOFFICE_BIN")

	cfg := Load()
	if cfg.OutputDir != "from-env" {
		t.Fatalf("expected env to win, got %q", cfg.OutputDir)
	}
	if cfg.SofficeBinary != "/opt/soffice" {
		t.Fatalf("expected .env value, got %q", cfg.SofficeBinary)
	}
}

func TestDocumentPath(t *testing.T) {
	cfg := Config{OutputDir: "Resumes"}
	got, err := cfg.DocumentPath("Acme Corp", "Backend Engineer", "docx")
	if err != nil {
		t.Fatalf("DocumentPath: %v", err)
	}
	want := filepath.Join("Resumes", "Acme_Corp_Backend_Engineer.docx")
	if got != want {
		t.Fatalf("DocumentPath = %q, want %q", got, want)
	}
	if _, err := cfg.DocumentPath("..", "x", "docx"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a.txt, ,b.txt,")
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Fatalf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Fatal("expected nil for empty input")
	}
}
