package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davenowercise/nowercise-app-sub004/internal/adaptive"
	"github.com/davenowercise/nowercise-app-sub004/internal/checkins"
	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/markers"
	"github.com/davenowercise/nowercise-app-sub004/internal/queue"
	"github.com/davenowercise/nowercise-app-sub004/internal/screening"
	"github.com/davenowercise/nowercise-app-sub004/internal/services/health"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/config"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/db"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/object"
	localstore "github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/object/local"
	s3store "github.com/davenowercise/nowercise-app-sub004/internal/shared/storage/object/s3"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/telemetry"
	"github.com/davenowercise/nowercise-app-sub004/internal/todayplan"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Queue            queue.Client
	Engine           *decision.Engine
	CheckInService   *checkins.Service
	MarkerService    *markers.Service
	ScreeningService *screening.Service
	AdaptiveService  *adaptive.Service
	TodayPlanService *todayplan.Service
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.AuditStoreType) == "" {
		cfg.AuditStoreType = "local"
	}
	telemetry.Init(telemetry.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	ctx := context.Background()

	rules, err := decision.LoadRules(cfg.DecisionRulesFile)
	if err != nil {
		return nil, fmt.Errorf("load decision rules: %w", err)
	}
	engine, err := decision.NewEngine(rules)
	if err != nil {
		return nil, fmt.Errorf("decision rules: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Engine: engine,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Health:           health.NewService(app.DB),
		CheckInHandler:   checkins.NewHandler(app.CheckInService),
		MarkerHandler:    markers.NewHandler(app.MarkerService),
		ScreeningHandler: screening.NewHandler(app.ScreeningService),
		AdaptiveHandler:  adaptive.NewHandler(app.AdaptiveService, app.Queue),
		TodayPlanHandler: todayplan.NewHandler(app.TodayPlanService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsLocal() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsLocal() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.AuditStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("AUDIT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SessionEventsQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SessionEventsQueueURL)
}

func buildServices(app *App) {
	var (
		checkInRepo   checkins.Repo
		markerRepo    markers.Repo
		screeningRepo screening.Repo
		stateRepo     adaptive.Repo
	)
	if app.DB != nil {
		checkInRepo = &checkins.PGRepo{DB: app.DB}
		markerRepo = &markers.PGRepo{DB: app.DB}
		screeningRepo = &screening.PGRepo{DB: app.DB}
		stateRepo = &adaptive.PGRepo{DB: app.DB}
	} else {
		checkInRepo = checkins.NewMemoryRepo()
		markerRepo = markers.NewMemoryRepo()
		screeningRepo = screening.NewMemoryRepo()
		stateRepo = adaptive.NewMemoryRepo()
	}

	rules := app.Engine.Rules
	app.CheckInService = checkins.NewService(checkInRepo, rules)
	app.MarkerService = markers.NewService(markerRepo)
	app.ScreeningService = screening.NewService(screeningRepo)
	app.AdaptiveService = adaptive.NewService(stateRepo, rules)
	app.TodayPlanService = &todayplan.Service{
		Engine:    app.Engine,
		Screening: app.ScreeningService,
		CheckIns:  app.CheckInService,
		Markers:   app.MarkerService,
		State:     app.AdaptiveService,
		Audit:     app.Store,
	}
}
