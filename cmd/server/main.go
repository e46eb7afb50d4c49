package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taxdrill/backend/internal/api"
	"github.com/taxdrill/backend/internal/bank"
	"github.com/taxdrill/backend/internal/domain/run"
	"github.com/taxdrill/backend/internal/infrastructure/config"
	"github.com/taxdrill/backend/internal/service"
	"github.com/taxdrill/backend/internal/store"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	qbank, err := bank.Load(cfg.QuestionsDir)
	if err != nil {
		logger.Error("failed to load question bank", "error", err)
		os.Exit(1)
	}
	logger.Info("question bank loaded", "questions", qbank.Len())

	lookups, err := bank.LoadLookups(cfg.LookupsDir)
	if err != nil {
		logger.Error("failed to load lookups", "error", err)
		os.Exit(1)
	}

	var attemptLog store.AttemptLog
	switch cfg.AttemptStore {
	case "sqlite":
		attemptLog, err = store.NewSQLite(cfg.SQLitePath)
	default:
		attemptLog, err = store.NewFileLog(cfg.AttemptsDir)
	}
	if err != nil {
		logger.Error("failed to open attempt log", "error", err, "driver", cfg.AttemptStore)
		os.Exit(1)
	}
	defer attemptLog.Close()

	session := run.NewSession(attemptLog, logger)
	quizSvc := service.NewQuizService(qbank, attemptLog, logger)
	handler := api.NewHandler(qbank, lookups, quizSvc, session, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
