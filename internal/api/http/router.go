package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/examhall/internal/analytics"
	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/exam"
	"github.com/mind-engage/examhall/internal/logger"
	"github.com/mind-engage/examhall/internal/rbac"
)

// Deps are the services the router mounts.
type Deps struct {
	Auth      *auth.Service
	Questions *exam.QuestionService
	Quizzes   *exam.QuizService
	Attempts  *exam.Engine
	Analytics *analytics.Aggregator
	Admin     auth.AdminAccount
	Log       *logger.Logger

	// Ready reports whether the backing store is reachable; nil means always.
	Ready func(ctx context.Context) error
}

type RouterOptions struct {
	Prefix         string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps, opts RouterOptions) *chi.Mux {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	fail := errorWriter(d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(req.Context()); err != nil {
				d.Log.Warn("readiness check failed", "error", err)
				writeDetail(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	api := chi.NewRouter()
	api.Post("/register", RegisterHandler(d.Auth, fail))
	api.Post("/login", LoginHandler(d.Auth, fail))
	api.Post("/init-admin", InitAdminHandler(d.Auth, d.Admin, d.Log, fail))

	api.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth, fail))

		pr.With(rbac.Require("user:me")).Get("/me", MeHandler(fail))

		pr.With(rbac.Require("question:create")).Post("/questions", CreateQuestionHandler(d.Questions, fail))
		pr.With(rbac.Require("question:list")).Get("/questions", ListQuestionsHandler(d.Questions, fail))
		pr.With(rbac.Require("question:delete")).Delete("/questions/{id}", DeleteQuestionHandler(d.Questions, fail))

		pr.With(rbac.Require("quiz:create")).Post("/quizzes", CreateQuizHandler(d.Quizzes, fail))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes", ListQuizzesHandler(d.Quizzes, fail))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{id}", GetQuizHandler(d.Quizzes, fail))
		pr.With(rbac.Require("quiz:delete")).Delete("/quizzes/{id}", DeactivateQuizHandler(d.Quizzes, fail))

		pr.With(rbac.Require("attempt:start")).Post("/quizzes/{id}/start", StartAttemptHandler(d.Attempts, fail))
		pr.With(rbac.Require("attempt:submit")).Post("/quizzes/{id}/submit", SubmitAttemptHandler(d.Attempts, fail))

		pr.With(rbac.Require("analytics:view")).Get("/analytics/students", StudentAnalyticsHandler(d.Analytics, fail))
		pr.With(rbac.Require("analytics:view")).Get("/analytics/quizzes", QuizAnalyticsHandler(d.Analytics, fail))
	})

	prefix := opts.Prefix
	if prefix == "" || prefix == "/" {
		r.Mount("/", api)
	} else {
		r.Mount(prefix, api)
	}
	return r
}
