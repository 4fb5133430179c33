package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/pipeline"
	"hh-vacancies-go/internal/scheduler"
	"hh-vacancies-go/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "config.json", "Configuration file path (.json, .yml or .yaml)")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration validation failed")
	}

	logger.InitLogging(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Close()

	pg := storage.NewPostgres(cfg.DSN(), cfg.MaintenanceDSN(), cfg.Database.Name)
	p, err := pipeline.NewFromConfig(cfg, pg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoLog(ctx, "starting hh loader for %d employers", len(cfg.Loader.EmployerIDs))

	job := func(ctx context.Context) error {
		_, err := p.Run(ctx)
		printMetrics(p)
		return err
	}

	if cfg.Loader.Schedule == "" {
		if err := job(ctx); err != nil {
			return 1
		}
		return 0
	}

	s := scheduler.New(cfg.Loader.Schedule, job)
	if err := s.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	// initial cycle, so the tables are filled without waiting for the first tick
	s.Trigger()

	<-ctx.Done()
	logger.InfoLog(context.Background(), "shutdown signal received, waiting for the current cycle")

	s.Stop()
	logger.InfoLog(context.Background(), "hh loader shutdown complete")
	return 0
}

// printMetrics logs the accumulated pipeline counters.
func printMetrics(p *pipeline.Pipeline) {
	m := p.Metrics()
	logger.Logger().Info().
		Int64("runs", m.Runs).
		Int64("failed_runs", m.FailedRuns).
		Int64("employers_fetched", m.EmployersFetched).
		Int64("vacancies_fetched", m.VacanciesFetched).
		Int64("vacancies_inserted", m.VacanciesInserted).
		Int64("vacancies_orphaned", m.VacanciesOrphaned).
		Str("last_run_id", m.LastRunID).
		Dur("last_duration", m.LastDuration).
		Msg("loader metrics")
}
