// Package server wires the whole application together: database,
// services, handlers, middleware, and routes. main.go only builds a
// Config and calls New + Start.
//
// This is the composition root. Every dependency is constructed here
// and injected downward; no other package reaches sideways for a
// database handle or a logger.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/handler"
	"github.com/nadhifra/portofolio-api/internal/middleware"
	sqliteRepo "github.com/nadhifra/portofolio-api/internal/repository/sqlite"
	"github.com/nadhifra/portofolio-api/internal/service"
	"github.com/nadhifra/portofolio-api/internal/upload"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	UploadDir string // filesystem root for stored uploads

	JWTSecret string

	// GitHub OAuth app. When ClientID is empty the OAuth routes are
	// not registered; local accounts still work.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that need closing on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories from the DB, services from repositories, handlers from
// services, routes from handlers.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route map:
//
//	GET  /uploads/*            → stored files (public)
//	GET  /auth/github/login    → OAuth redirect
//	GET  /auth/github/callback → OAuth completion
//	POST /auth/register        → local account
//	POST /auth/login           → local account
//	POST /auth/logout          → clear session
//	GET  /api/me               → profile for the session   [auth]
//	POST /api/users            → create profile            [auth]
//	PUT  /api/users/{id}       → edit profile              [auth]
//	GET  /api/portfolios       → browse (?category=)
//	GET  /api/portfolios/{id}  → detail
//	POST /api/portfolios       → create entry              [auth]
//	POST /api/upload           → profile picture           [auth]
//	POST /api/upload/document  → PDF document              [auth]
func (s *Server) setupRoutes() error {
	// Global middleware, in execution order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	store := upload.NewStore(s.config.UploadDir, s.logger)

	userService := service.NewUserService(s.db, store, s.logger)
	portfolioService := service.NewPortfolioService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(github, tokens, auth.NewPasswordService(), s.db, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, s.logger)
	uploadHandler := handler.NewUploadHandler(store, s.logger)

	// Stored uploads are served straight off the filesystem. The store
	// generates the names, so there is nothing sensitive to hide.
	fileServer := http.FileServer(http.Dir(s.config.UploadDir))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	s.router.Route("/auth", func(r chi.Router) {
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		} else {
			s.logger.Warn("GitHub OAuth not configured, /auth/github routes disabled")
		}
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public browsing.
		r.Get("/portfolios", portfolioHandler.HandleList)
		r.Get("/portfolios/{id}", portfolioHandler.HandleGet)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireIdentity(tokens))

			r.Get("/me", userHandler.HandleMe)
			r.Post("/users", userHandler.HandleCreate)
			r.Put("/users/{id}", userHandler.HandleUpdate)
			r.Post("/portfolios", portfolioHandler.HandleCreate)
			r.Post("/upload", uploadHandler.HandleImage)
			r.Post("/upload/document", uploadHandler.HandleDocument)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, and close the database so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
