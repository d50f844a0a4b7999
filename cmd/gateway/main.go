package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/opoprep/opoprep-engine/internal/api/http"
	auth "github.com/opoprep/opoprep-engine/internal/auth/middleware"
	"github.com/opoprep/opoprep-engine/internal/catalog"
	"github.com/opoprep/opoprep-engine/internal/config"
	"github.com/opoprep/opoprep-engine/internal/db"
	"github.com/opoprep/opoprep-engine/internal/rbac"
	"github.com/opoprep/opoprep-engine/internal/session"
	"github.com/opoprep/opoprep-engine/internal/syllabus"
	syncx "github.com/opoprep/opoprep-engine/internal/sync"
	"github.com/opoprep/opoprep-engine/internal/weakness"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Engine wiring ---
	resolver := syllabus.NewResolver(syllabus.NewSQLScopeSource(dbh))
	detector := weakness.NewDetector(weakness.NewSQLAttemptSource(dbh, resolver))
	picker := catalog.NewPicker(catalog.NewSQLCatalog(dbh), cfg.AccuracyWindow)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)
	sessions := session.NewService(session.NewSQLStore(dbh), events, cfg.AbandonTTL)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, auth.LoginOptions{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("topic:resolve")).
			Get("/resolve-topic", api.ResolveTopicHandler(resolver))
		pr.With(rbac.RequireAny("weakness:view-own", "weakness:view-any")).
			Get("/weak-articles", api.WeakArticlesHandler(detector, weakness.Options{
				MinAttempts:       cfg.WeakMinAttempts,
				MaxSuccessRatePct: cfg.WeakMaxSuccessPct,
				MaxPerTopic:       cfg.WeakMaxPerTopic,
			}))

		pr.With(rbac.Require("exam:init")).
			Post("/exam/init", api.InitExamHandler(sessions))
		pr.With(rbac.Require("exam:resume")).
			Get("/exam/resume", api.ResumeExamHandler(sessions))
		pr.With(rbac.Require("exam:answer")).
			Post("/exam/answer", api.AnswerHandler(sessions))
		pr.With(rbac.Require("exam:complete")).
			Post("/exam/complete", api.CompleteExamHandler(sessions))
		pr.With(rbac.Require("exam:abandon")).
			Post("/exam/abandon", api.AbandonExamHandler(sessions))
		pr.With(rbac.Require("exam:init")).
			Get("/exam/suggest", api.SuggestQuestionsHandler(picker))

		pr.With(rbac.Require("events:tail")).
			Get("/admin/events", api.EventsTailHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// stale sessions become abandoned explicitly instead of lingering
	go func() {
		t := time.NewTicker(cfg.SweepInterval)
		defer t.Stop()
		for range t.C {
			swept, err := sessions.SweepAbandoned(context.Background())
			if err != nil {
				log.Printf("abandon sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("abandon sweep: %d sessions", swept)
			}
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
