package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/config"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/database"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/jobs"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/logger"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/server"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Log, cfg.Env)
	log.Info().Msg("starting mtaa backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	if cfg.Database.Seed {
		if err := database.Seed(db, log); err != nil {
			log.Fatal().Err(err).Msg("database seeding failed")
		}
	}

	scheduler := jobs.NewScheduler(db, log)
	if err := scheduler.Start(cfg.Jobs.ReconcileSchedule); err != nil {
		log.Fatal().Err(err).Msg("failed to start jobs")
	}

	srv := server.New(cfg, db, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	scheduler.Stop(shutdownCtx)
	log.Info().Msg("server stopped")
}
