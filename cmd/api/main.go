package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spending-reports/internal/api"
	"github.com/dvloznov/spending-reports/internal/api/handlers"
	"github.com/dvloznov/spending-reports/internal/app"
	"github.com/dvloznov/spending-reports/internal/config"
	"github.com/dvloznov/spending-reports/internal/jobs"
	"github.com/dvloznov/spending-reports/internal/jobs/inmemory"
	"github.com/dvloznov/spending-reports/internal/logger"
	"github.com/dvloznov/spending-reports/internal/reports"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	var (
		port      = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		rateLimit = flag.Float64("rate-limit", 10, "Requests per second allowed on /api, 0 disables")
	)
	flag.Parse()

	log, logCloser, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx := logger.WithContext(context.Background(), log)

	source, sourceCloser, err := app.NewTableSource(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open operations source")
	}
	if sourceCloser != nil {
		defer sourceCloser.Close()
	}

	svc, svcCloser, err := app.NewReportService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize report service")
	}
	defer svcCloser.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.WorkerCount, jobStore)
	jobQueue.SetLogger(log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, reports.NewWeekdayJobHandler(svc, source)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	if cfg.ReportSchedule != "" {
		schedule, err := jobs.NewSchedule(cfg.ReportSchedule, jobQueue, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure report schedule")
		}
		schedule.Start()
		defer schedule.Stop()
		log.Info().Str("schedule", cfg.ReportSchedule).Msg("Weekday report schedule enabled")
	}

	handler := api.NewRouter(api.RouterConfig{
		Reports:   handlers.NewReportsHandler(svc, source, log),
		Jobs:      handlers.NewJobsHandler(jobQueue, jobStore, log),
		Log:       log,
		RateLimit: *rateLimit,
		Burst:     int(*rateLimit) + 1,
	})

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight jobs finish before cancelling their context.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
