package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/quizmill/quizmill/internal/api/http"
	"github.com/quizmill/quizmill/internal/auth"
	"github.com/quizmill/quizmill/internal/config"
	"github.com/quizmill/quizmill/internal/db"
	"github.com/quizmill/quizmill/internal/eventlog"
	"github.com/quizmill/quizmill/internal/quizstore"
	"github.com/quizmill/quizmill/internal/rbac"
	"github.com/quizmill/quizmill/internal/session"
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
	store := quizstore.NewSQLStore(dbh)
	events := eventlog.NewRepo(dbh)

	// --- Live sessions ---
	registry := session.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	defer registry.Close()

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash)

	sessions := &api.Sessions{Registry: registry, Store: store, Events: events}
	embeds := &api.Embeds{PublicURL: cfg.PublicURL, ItemCap: cfg.EmbedItemCap}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc))

	// Authoring API (JWT -> role in context -> permission check)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.UploadQuizHandler(store, events))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.With(rbac.Require("embed:create")).
			Post("/embeds", embeds.CreateEmbedHandler())
		pr.With(rbac.Require("results:view")).
			Get("/results", api.ListResultsHandler(store))
	})

	// Player API (public; sessions are anonymous and ephemeral)
	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", sessions.CreateSessionHandler())
		sr.Get("/{sessionID}", sessions.ViewHandler())
		sr.Get("/{sessionID}/review", sessions.ReviewHandler())
		sr.Delete("/{sessionID}", sessions.DeleteHandler())
		for _, intent := range []string{"select", "confirm", "flip", "next", "prev", "restart", "review", "results"} {
			sr.Post("/{sessionID}/"+intent, sessions.IntentHandler(intent))
		}
	})

	// Embed surfaces; the payload never leaves the URL fragment.
	r.Get("/embed/questions", embeds.PageHandler())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
