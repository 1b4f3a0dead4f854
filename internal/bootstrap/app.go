// Package bootstrap wires shared dependencies for the binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"

	"dock-optimizer/internal/analytics"
	"dock-optimizer/internal/appointments"
	"dock-optimizer/internal/documents"
	"dock-optimizer/internal/intake"
	"dock-optimizer/internal/ocr"
	"dock-optimizer/internal/shared/config"
	"dock-optimizer/internal/shared/storage/db"
	"dock-optimizer/internal/shared/storage/object"
	localstore "dock-optimizer/internal/shared/storage/object/local"
)

// App holds shared dependencies for the worker and CLI binaries.
type App struct {
	Config config.Config
	DB     *sql.DB
	Store  object.ObjectStore
	Paths  object.PathResolver
	Engine ocr.Engine

	DocumentsRepo    documents.Repo
	AnalyticsRepo    analytics.Repo
	AppointmentsRepo appointments.Repo

	DocumentsService *documents.Service
	Intake           *intake.Service
}

// Build prepares shared dependencies. With an empty DATABASE_URL in a
// dev-like environment, storage falls back to in-memory repositories so the
// pipeline can run without infrastructure.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := localstore.New(cfg.DataDir)

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Paths:  store,
		Engine: buildEngine(cfg),
	}
	buildRepos(app)
	buildServices(app)
	return app, nil
}

// RedisOpt returns the asynq connection options for the configured broker.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
		DB:       a.Config.RedisDB,
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultWorkerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildEngine(cfg config.Config) ocr.Engine {
	if strings.TrimSpace(cfg.OCRRunnerCmd) != "" {
		return ocr.NewRunner(cfg.OCRRunnerCmd)
	}
	return ocr.NewTesseract(cfg.OCRLang)
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.AnalyticsRepo = &analytics.PGRepo{DB: app.DB}
		app.AppointmentsRepo = &appointments.PGRepo{DB: app.DB}
		return
	}
	app.DocumentsRepo = documents.NewMemoryRepo()
	app.AnalyticsRepo = analytics.NewMemoryRepo()
	app.AppointmentsRepo = appointments.NewMemoryRepo()
}

func buildServices(app *App) {
	app.DocumentsService = &documents.Service{Repo: app.DocumentsRepo}
	app.Intake = &intake.Service{
		Documents: app.DocumentsService,
		Invoker:   ocr.NewInvoker(app.Engine, app.Config.OCRTimeout),
		Objects:   app.Store,
		Paths:     app.Paths,
		Analytics: &analytics.Recorder{Repo: app.AnalyticsRepo},
		Linker:    &appointments.Linker{Repo: app.AppointmentsRepo},
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "test", "local", "":
		return true
	default:
		return false
	}
}
