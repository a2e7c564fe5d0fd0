package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/softdex/softdex/app/api"
	"github.com/softdex/softdex/app/cfg"
	"github.com/softdex/softdex/app/database"
	"github.com/softdex/softdex/app/normalize"
	"github.com/softdex/softdex/app/tasks"
	"github.com/softdex/softdex/app/taxonomy"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Softdex server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	taxonomyCache := taxonomy.NewCache(appCfg.TaxonomyPath)
	if err := taxonomyCache.Run(); err != nil {
		log.Fatalf("Failed to load taxonomy: %v", err)
	}
	slog.Info("Taxonomy loaded", "categories", len(taxonomyCache.Get().Categories), "default", taxonomyCache.Get().DefaultCategory)

	productRepo := database.NewProductRepository(db)
	cleanRepo := database.NewCleanProductRepository(db)
	reviewRepo := database.NewReviewRepository(db)

	if appCfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY not set, normalization will mark products as failed")
	}

	client := normalize.NewClient()
	prompter := normalize.NewPrompter(taxonomyCache)
	reconciler := normalize.NewReconciler(taxonomyCache)
	limiter := normalize.NewRateLimiter(appCfg.MaxRequestsPerMinute)
	service := normalize.NewService(client, prompter, reconciler, limiter)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval, "batch_size", appCfg.MaxProductsPerBatch)
	scheduler := tasks.NewScheduler(productRepo, service)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(productRepo, cleanRepo, reviewRepo, service, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Softdex server shutdown complete")
}
