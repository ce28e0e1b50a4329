package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nickykapur/jobpool/app/api"
	"github.com/nickykapur/jobpool/app/cache"
	"github.com/nickykapur/jobpool/app/cfg"
	"github.com/nickykapur/jobpool/app/database"
	"github.com/nickykapur/jobpool/app/jobs"
	"github.com/nickykapur/jobpool/app/profiles"
	"github.com/nickykapur/jobpool/app/scraper"
	"github.com/nickykapur/jobpool/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Job Pool server", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	// Initialize repositories
	postingRepo := database.NewPostingRepository(db)
	signatureRepo := database.NewSignatureRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	userRepo := database.NewUserRepository(db)

	// Optional Redis view cache
	var viewCache jobs.ViewCache
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewCache(appConfig.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", appConfig.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		viewCache = redisCache
		slog.Info("View cache enabled", "addr", appConfig.RedisAddr)
	} else {
		slog.Info("View cache disabled (REDIS_ADDR not set)")
	}

	// Load user profiles
	profileCache := profiles.NewCache(appConfig.ProfilesDir)
	if err := profileCache.Run(); err != nil {
		slog.Error("Failed to load profiles", "dir", appConfig.ProfilesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Profiles loaded", "dir", appConfig.ProfilesDir, "count", profileCache.GetProfileCount())

	// Initialize core components
	enforcer := jobs.NewEnforcer(postingRepo)
	pipeline := jobs.NewPipeline(postingRepo, signatureRepo, enforcer, viewCache,
		appConfig.SignatureWindowDays, appConfig.CountryLimit)
	overlay := jobs.NewOverlay(postingRepo, interactionRepo, signatureRepo, viewCache)
	viewer := jobs.NewViewer(postingRepo, interactionRepo, signatureRepo, userRepo,
		viewCache, time.Duration(appConfig.ViewCacheTTL)*time.Second, appConfig.SignatureWindowDays)

	httpClient := &http.Client{Timeout: time.Duration(appConfig.ScrapeTimeout) * time.Second}
	source := scraper.NewHTTPSource(appConfig.ScraperURL, httpClient, appConfig.UserAgent)
	collector := scraper.NewCollector(source, appConfig.WorkerCount,
		time.Duration(appConfig.ScrapeTimeout)*time.Second)

	// Initialize and start the task scheduler
	scheduler := tasks.NewScheduler(profileCache, collector, pipeline, userRepo)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()
	slog.Info("Scheduler started", "schedule", appConfig.ScrapeSchedule, "workers", appConfig.WorkerCount)

	// Initialize HTTP server
	apiHandler := api.NewHandler(postingRepo, signatureRepo, interactionRepo, userRepo,
		profileCache, collector, pipeline, viewer, overlay, enforcer, scheduler)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
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

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
