package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"resume-tailor/internal/shared/util"
)

// Config holds application configuration.
type Config struct {
	Env               string
	LLMProvider       string
	LLMModel          string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OracleTimeout     time.Duration
	ArtifactStoreType string
	ArtifactDir       string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
	ActiveResumeKey   string
	TailoredResumeKey string
	OutputDir         string
	AppLogBackend     string
	AppLogPath        string
	DatabaseURL       string
	SofficeBinary     string
	RulesFile         string
	StubResponses     []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	backend := normalizeAppLogBackend(getEnv("APPLOG_BACKEND", "xlsx"))
	dbURL := os.Getenv("DATABASE_URL")

	if backend == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required when APPLOG_BACKEND=postgres")
	}

	return Config{
		Env:               env,
		LLMProvider:       normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:          getEnv("LLM_MODEL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OracleTimeout:     getSeconds("ORACLE_TIMEOUT_SECONDS", 120*time.Second),
		ArtifactStoreType: normalizeStoreType(getEnv("ARTIFACT_STORE", "local")),
		ArtifactDir:       getEnv("ARTIFACT_DIR", "."),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		ActiveResumeKey:   getEnv("ACTIVE_RESUME_KEY", "resume_fixed.json"),
		TailoredResumeKey: getEnv("TAILORED_RESUME_KEY", "tailored_resume.json"),
		OutputDir:         getEnv("OUTPUT_DIR", "Resumes"),
		AppLogBackend:     backend,
		AppLogPath:        getEnv("APPLOG_PATH", defaultAppLogPath(backend)),
		DatabaseURL:       dbURL,
		SofficeBinary:     getEnv("SOFFICE_BIN", "soffice"),
		RulesFile:         getEnv("RULES_FILE", ""),
		StubResponses:     splitList(os.Getenv("STUB_RESPONSE_FILES")),
	}
}

// DocumentPath returns OUTPUT_DIR/<Company>_<Role>.<ext> with spaces replaced by underscores.
func (c Config) DocumentPath(company, role, ext string) (string, error) {
	name, err := util.DocumentName(company, role, ext)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.OutputDir, name), nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config: %s invalid seconds %q, using %s", key, raw, def)
		return def
	}
	return time.Duration(parsed) * time.Second
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "stub":
		return "stub"
	default:
		return "gemini"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeAppLogBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "xlsx"
	}
}

func defaultAppLogPath(backend string) string {
	switch backend {
	case "sqlite":
		return "applications.db"
	case "postgres":
		return ""
	default:
		return "applications.xlsx"
	}
}
