package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mbecker/splitpool/docs"
	"github.com/mbecker/splitpool/internal/account"
	"github.com/mbecker/splitpool/internal/balance"
	"github.com/mbecker/splitpool/internal/config"
	"github.com/mbecker/splitpool/internal/database"
	"github.com/mbecker/splitpool/internal/transaction"
	mw "github.com/mbecker/splitpool/pkg/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Info("Connected to database successfully")

	// Account feature
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, logger)
	accountHandler := account.NewHandler(accountService)

	// Transaction feature
	transactionRepo := transaction.NewRepository(db)
	transactionService := transaction.NewService(transactionRepo, accountRepo, logger)
	transactionHandler := transaction.NewHandler(transactionService)

	// Balance feature (pure engine behind it)
	balanceService := balance.NewService(accountRepo, transactionRepo, logger)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/accounts", accountHandler.Routes())
		r.Mount("/transactions", transactionHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	// Periodic consistency audit: recompute everything and verify the
	// closing invariants against the stored data
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AuditSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := balanceService.Audit(ctx); err != nil {
			logger.WithError(err).Error("balance audit failed")
		}
	}); err != nil {
		logger.Fatalf("Invalid audit schedule %q: %v", cfg.AuditSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	logger.Infof("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
