package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/examhall/internal/analytics"
	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/config"
	"github.com/mind-engage/examhall/internal/db"
	"github.com/mind-engage/examhall/internal/exam"
	"github.com/mind-engage/examhall/internal/lock"
	"github.com/mind-engage/examhall/internal/logger"
	syncx "github.com/mind-engage/examhall/internal/sync"
)

// app holds everything the commands share. close releases it in reverse
// order of construction.
type app struct {
	cfg   config.Config
	log   *logger.Logger
	db    *sql.DB
	redis *redis.Client

	auth      *auth.Service
	questions *exam.QuestionService
	quizzes   *exam.QuizService
	engine    *exam.Engine
	analytics *analytics.Aggregator
}

func loadConfig(path string) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return cfg, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	driver, err := db.ParseDriver(cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Open(ctx, driver, cfg.DB.DSN)
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	dbh, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, db: dbh}

	var locker exam.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		locker = lock.NewRedis(a.redis, cfg.StartLockTTL)
		log.Info("start lock backed by redis", "addr", cfg.Redis.Addr)
	}

	store := exam.NewSQLStore(dbh)
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	a.auth = auth.NewService(store, tokens, auth.Options{
		BcryptCost:       cfg.Auth.BcryptCost,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		Logger:           log,
	})
	a.questions = exam.NewQuestionService(store)
	a.quizzes = exam.NewQuizService(store, store)
	a.engine = exam.NewEngine(store,
		exam.WithLocker(locker),
		exam.WithEvents(syncx.NewEventRepo(dbh, string(cfg.Mode))),
		exam.WithLogger(log.With("component", "attempts")),
	)
	a.analytics = analytics.NewAggregator(store, cfg.RecentActivityLimit)
	return a, nil
}

func (a *app) adminAccount() auth.AdminAccount {
	return auth.AdminAccount{
		Username: a.cfg.Admin.Username,
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
	}
}

// ready checks every backing service the request path depends on.
func (a *app) ready(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
