package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/G26karthik/AI-Interview-Assistant/internal/interview"
	"github.com/G26karthik/AI-Interview-Assistant/internal/llm"
	"github.com/G26karthik/AI-Interview-Assistant/internal/llm/groq"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/config"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/server"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/storage/db"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/storage/object"
	localstore "github.com/G26karthik/AI-Interview-Assistant/internal/shared/storage/object/local"
)

var (
	errMissingDatabaseURL = errors.New("DATABASE_URL is required")

	timeNow = time.Now
)

// App holds shared dependencies for the API process.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Objects object.ObjectStore

	Store      *interview.Store
	Service    *interview.Service
	Countdown  *interview.Countdown
	Reconciler *interview.Reconciler
	Handler    *interview.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo interview.Repo
	if sqlDB != nil {
		repo = &interview.PGRepo{DB: sqlDB}
	} else {
		repo = interview.NewMemoryRepo()
	}

	store := interview.NewStore(ctx, repo)

	mode := llm.ModeUnavailable
	var generator llm.Generator
	var scorer llm.Scorer
	var summarizer llm.Summarizer
	if strings.TrimSpace(cfg.GroqAPIKey) != "" {
		client, err := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
		if err != nil {
			return nil, err
		}
		mode = llm.ModeLive
		generator, scorer, summarizer = client, client, client
	} else {
		log.Printf("bootstrap: GROQ_API_KEY empty; running without AI (interviews cannot start)")
	}

	reconciler := interview.NewReconciler(store, func(ctx context.Context, question, answer string) (interview.Score, error) {
		if scorer == nil {
			return interview.Score{}, llm.ErrScoreDegraded
		}
		scored, err := scorer.Score(ctx, question, answer)
		if err != nil {
			return interview.Score{}, err
		}
		return interview.Score{Numeric: scored.Numeric, Feedback: scored.Feedback}, nil
	})

	svc := &interview.Service{
		Store:      store,
		Generator:  generator,
		Scorer:     scorer,
		Summarizer: summarizer,
		Mode:       mode,
		Role:       cfg.InterviewRole,
		Wake:       reconciler.Kick,
	}

	countdown := interview.NewCountdown(store, func(ctx context.Context, candidateID string) {
		if _, err := svc.SubmitAnswer(ctx, candidateID, "", true); err != nil {
			log.Printf("bootstrap: auto-submit failed for %s: %v", candidateID, err)
		}
	})

	objects := localstore.New(cfg.LocalStoreDir)
	handler := interview.NewHandler(store, svc, objects)

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Objects:    objects,
		Store:      store,
		Service:    svc,
		Countdown:  countdown,
		Reconciler: reconciler,
		Handler:    handler,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Interview: handler,
		Mode:      string(mode),
	})

	return app, nil
}

// StartWorkers launches the countdown scan and score reconciliation loops.
// They stop when ctx is cancelled.
func (a *App) StartWorkers(ctx context.Context) {
	go a.Countdown.Run(ctx)
	go a.Reconciler.Run(ctx)
}

// Shutdown pauses running sessions so their timers survive a restart, then
// closes the database.
func (a *App) Shutdown(ctx context.Context) {
	a.Store.PauseActive(ctx, "system", timeNow())
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory snapshot store")
			return nil, nil
		}
		return nil, errMissingDatabaseURL
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory snapshot store: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory snapshot store: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
