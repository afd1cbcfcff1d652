package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spending-reports/internal/app"
	"github.com/dvloznov/spending-reports/internal/config"
	"github.com/dvloznov/spending-reports/internal/jobs"
	"github.com/dvloznov/spending-reports/internal/jobs/inmemory"
	"github.com/dvloznov/spending-reports/internal/logger"
	"github.com/dvloznov/spending-reports/internal/reports"
)

const defaultSchedule = "0 8 * * MON"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	spec := cfg.ReportSchedule
	if spec == "" {
		spec = defaultSchedule
	}
	var (
		schedule = flag.String("schedule", spec, "Cron expression for weekday reports (or set REPORT_SCHEDULE env)")
		runNow   = flag.Bool("now", false, "Publish one weekday report job at startup")
	)
	flag.Parse()

	log, logCloser, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

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

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.WorkerCount, jobStore)
	jobQueue.SetLogger(log)

	log.Info().Msg("Starting worker service")

	if err := jobQueue.Start(ctx, reports.NewWeekdayJobHandler(svc, source)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	cron, err := jobs.NewSchedule(*schedule, jobQueue, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure schedule")
	}
	cron.Start()

	if *runNow {
		job := &jobs.WeekdayReportJob{Trigger: "startup"}
		if err := jobQueue.PublishWeekdayReport(ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to publish startup report")
		}
	}

	log.Info().Str("schedule", *schedule).Msg("Worker service started, waiting for schedule...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Wait for a running scheduled publish to return.
	<-cron.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	log.Info().Msg("Worker service exited")
}
