package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"resume-tailor/internal/applog"
	"resume-tailor/internal/convert"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/llm/gemini"
	"resume-tailor/internal/llm/openai"
	"resume-tailor/internal/pipeline"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/resume/contract"
)

// App holds shared dependencies. The oracle and the application log are
// built on first use so commands that do not need them never touch a
// network client or a database.
type App struct {
	Config    config.Config
	Store     object.ObjectStore
	Rules     contract.Rules
	Converter convert.Converter

	mu       sync.Mutex
	oracle   llm.Oracle
	pipeline *pipeline.Service
	recorder applog.Recorder
	db       *sql.DB
}

// Build prepares the artifact store, tailoring rules and converter.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ArtifactStoreType) == "" {
		cfg.ArtifactStoreType = "local"
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rules, err := contract.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Rules:     rules,
		Converter: convert.Soffice{Binary: cfg.SofficeBinary},
	}, nil
}

// Pipeline returns the extraction and tailoring service, building the oracle if needed.
func (a *App) Pipeline(ctx context.Context) (*pipeline.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pipeline != nil {
		return a.pipeline, nil
	}
	if a.oracle == nil {
		oracle, err := buildOracle(ctx, a.Config)
		if err != nil {
			return nil, err
		}
		a.oracle = oracle
	}
	a.pipeline = &pipeline.Service{
		Oracle: a.oracle,
		Store:  a.Store,
		Keys:   a.keys(),
		Rules:  a.Rules,
	}
	return a.pipeline, nil
}

// Artifacts returns a pipeline bound to the store only, for commands that
// read saved records without calling the oracle.
func (a *App) Artifacts() *pipeline.Service {
	return &pipeline.Service{Store: a.Store, Keys: a.keys(), Rules: a.Rules}
}

func (a *App) keys() pipeline.Keys {
	return pipeline.Keys{Active: a.Config.ActiveResumeKey, Tailored: a.Config.TailoredResumeKey}
}

// SetOracle overrides the oracle before the pipeline is first built.
func (a *App) SetOracle(oracle llm.Oracle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.oracle = oracle
	a.pipeline = nil
}

// Recorder returns the application log for the configured backend.
func (a *App) Recorder(ctx context.Context) (applog.Recorder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recorder != nil {
		return a.recorder, nil
	}
	recorder, sqlDB, err := buildRecorder(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	a.recorder = recorder
	a.db = sqlDB
	return recorder, nil
}

// Close releases the database handle, if one was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	a.recorder = nil
	return err
}

func buildOracle(ctx context.Context, cfg config.Config) (llm.Oracle, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OracleTimeout)
	case "stub":
		responses := make([]string, 0, len(cfg.StubResponses))
		for _, path := range cfg.StubResponses {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read stub response %s: %w", path, err)
			}
			responses = append(responses, string(data))
		}
		telemetry.Info("stub oracle", map[string]any{"responses": len(responses)})
		return llm.NewStubOracle(responses...), nil
	default:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, gemini.Options{})
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArtifactStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("ARTIFACT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.ArtifactDir), nil
	}
}

func buildRecorder(ctx context.Context, cfg config.Config) (applog.Recorder, *sql.DB, error) {
	switch cfg.AppLogBackend {
	case "sqlite":
		sqlDB, err := db.OpenSQLite(ctx, cfg.AppLogPath, db.OptionsFromEnv(db.DefaultCLIOptions()))
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return applog.NewSQLLog(sqlDB, "sqlite"), sqlDB, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, errors.New("APPLOG_BACKEND=postgres requires DATABASE_URL")
		}
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
		if err != nil {
			return nil, nil, err
		}
		// Dev databases are migrated on connect; elsewhere cmd/migrate owns the schema.
		if isDevLike(cfg.Env) {
			if err := db.RunMigrations(ctx, sqlDB, db.DialectPostgres); err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
		}
		return applog.NewSQLLog(sqlDB, "postgres"), sqlDB, nil
	default:
		return applog.NewWorkbook(cfg.AppLogPath), nil, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
