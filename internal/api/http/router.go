package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/eventlog"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
)

type Deps struct {
	DB        *sql.DB
	Store     quiz.Store
	Questions QuestionProvider
	Cache     Invalidator
	Auth      *auth.Service
	Events    *eventlog.Repo

	CORSOrigins []string
	// Dev only: trust the role claim when the users table has no row.
	AllowClaimFallback bool
}

// NewRouter assembles the full API surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/register", auth.RegisterHandler(d.DB))
		ar.Post("/login", auth.LoginHandler(d.DB, d.Auth))

		// Public listings; admins get the answer key on questions, so role is
		// attached opportunistically.
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Optional(d.Auth))
			pr.Use(optionalRoleFromDB(d))
			pr.Get("/quizzes", ListQuizzesHandler(d.Store))
			pr.Get("/quizzes/{id}/questions", ListQuestionsHandler(d.Store))
		})

		// Authenticated API (JWT → role in context → permission check).
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(d.Auth))
			pr.Use(auth.AttachRoleFromDB(d.DB, d.AllowClaimFallback))

			pr.With(rbac.Require("quiz:create")).
				Post("/quizzes", CreateQuizHandler(d.Store, d.Events))
			pr.With(rbac.Require("quiz:delete")).
				Delete("/quizzes/{id}", DeleteQuizHandler(d.Store, d.Events, d.Cache))

			pr.With(rbac.Require("question:create")).
				Post("/questions", CreateQuestionHandler(d.Store, d.Cache))
			pr.With(rbac.Require("question:delete")).
				Delete("/questions/{id}", DeleteQuestionHandler(d.Store, d.Cache))

			pr.With(rbac.Require("quiz:attempt")).
				Post("/submit-quiz", SubmitQuizHandler(d.Questions, d.Store, d.Events))

			pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
				Get("/results", ListResultsHandler(d.Store))
			pr.With(rbac.Require("result:export")).
				Get("/results/export", ExportResultsHandler(d.Store))

			pr.With(rbac.Require("leaderboard:view")).
				Get("/leaderboard", LeaderboardHandler(d.Store))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// optionalRoleFromDB upgrades the claimed role to the stored one when a
// subject is present, without rejecting anonymous requests.
func optionalRoleFromDB(d Deps) func(http.Handler) http.Handler {
	attach := auth.AttachRoleFromDB(d.DB, d.AllowClaimFallback)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.SubjectFromContext(r.Context()) == "" {
				next.ServeHTTP(w, r)
				return
			}
			attach(next).ServeHTTP(w, r)
		})
	}
}
