package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exploria-travel/auth-service/internal/background"
	"github.com/exploria-travel/auth-service/internal/config"
	"github.com/exploria-travel/auth-service/internal/database"
	"github.com/exploria-travel/auth-service/internal/handlers"
	"github.com/exploria-travel/auth-service/internal/idp"
	middlewareCustom "github.com/exploria-travel/auth-service/internal/middleware"
	"github.com/exploria-travel/auth-service/internal/repositories"
	"github.com/exploria-travel/auth-service/internal/routes"
	"github.com/exploria-travel/auth-service/internal/services"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
	pkglogger "github.com/exploria-travel/auth-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	authEventRepo := repositories.NewAuthEventRepository(db)

	// Journal retention task
	cleanupManager := background.NewCleanupManager(authEventRepo, logger, cfg.Auth.CleanupInterval, cfg.Auth.JournalRetentionDays)

	// ID-token verification is optional: without a project id the service
	// trusts the client-supplied firebase_uid, matching deployments where a
	// gateway has already verified the token
	var verifier services.TokenVerifier
	if cfg.Auth.FirebaseProjectID != "" {
		verifier = idp.NewVerifier(cfg.Auth.FirebaseProjectID)
		logger.Info("id token verification enabled", slog.String("project_id", cfg.Auth.FirebaseProjectID))
	} else {
		logger.Warn("id token verification disabled, trusting client-supplied identities")
	}

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	journalService := services.NewJournalService(authEventRepo, logger, auditLogger)
	accountService := services.NewAccountService(accountRepo, journalService, verifier, logger, auditLogger)
	portalService := services.NewPortalService(accountRepo, journalService, verifier, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(accountService, ipConfig)
	portalHandler := handlers.NewPortalHandler(portalService, ipConfig)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.Env)
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, portalHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
