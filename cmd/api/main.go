package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ljimenez/chat-service/internal/config"
	"github.com/ljimenez/chat-service/internal/handler"
	"github.com/ljimenez/chat-service/internal/middleware"
	"github.com/ljimenez/chat-service/internal/providers"
	"github.com/ljimenez/chat-service/internal/repository"
	"github.com/ljimenez/chat-service/internal/service"
	"github.com/ljimenez/chat-service/internal/token"
	"github.com/ljimenez/chat-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the user store, selected once at startup
	var store repository.UserStore
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("Failed to initialize schema: %v", err)
		}
		store = pg
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data will not survive a restart")
		store = repository.NewMemoryStore()
	}

	// Provider fallback chain in fixed priority order
	dispatcher := providers.NewDispatcher([]providers.Provider{
		providers.NewGeminiClient(cfg.GeminiURL, cfg.GoogleAPIKey, cfg.ProviderTimeout, logger),
		providers.NewHuggingFaceClient(cfg.HuggingFaceURL, cfg.HuggingFaceAPIKey, cfg.ProviderTimeout, logger),
		providers.NewOpenAIClient(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.ProviderTimeout, logger),
	}, cfg.ProviderTimeout, logger)

	// Initialize layers
	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewSender(cfg, logger)
	}
	svc := service.NewService(store, tokens, dispatcher, mailer, logger)
	h := handler.NewHandler(svc, logger)

	// Periodic provider availability probe
	if cfg.ProbeSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.ProbeSchedule, dispatcher.Probe); err != nil {
			logger.Fatalf("Failed to schedule provider probe: %v", err)
		}
		c.Start()
		defer c.Stop()
	}
	dispatcher.Probe()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/face-login", h.FaceLogin).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(tokens))
	authRouter.HandleFunc("/auth/verify", h.Verify).Methods("POST")
	authRouter.HandleFunc("/auth/update-face", h.UpdateFace).Methods("POST")
	authRouter.HandleFunc("/chat", h.Chat).Methods("POST")
	authRouter.HandleFunc("/admin/users", h.ListUsers).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
