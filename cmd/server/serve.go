package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/casting-agency/internal/auth"
	"github.com/iliyamo/casting-agency/internal/config"
	"github.com/iliyamo/casting-agency/internal/database"
	"github.com/iliyamo/casting-agency/internal/logging"
	"github.com/iliyamo/casting-agency/internal/queue"
	"github.com/iliyamo/casting-agency/internal/repository"
	"github.com/iliyamo/casting-agency/internal/router"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := openDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("database unavailable")
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			return err
		}
	}
	genders := repository.NewGenderRepo(db)
	if err := genders.Seed(ctx); err != nil {
		return fmt.Errorf("seed gender: %w", err)
	}
	if rows, err := genders.List(ctx); err == nil {
		log.WithField("genders", len(rows)).Debug("gender lookup seeded")
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		log.WithField("addr", cfg.Redis.Address()).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.Events.URL != "" {
		events = queue.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue)
		if cfg.Events.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.LogDir, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("catalog consumer stopped")
				}
			}()
		}
	}

	e := router.New(router.Deps{
		DB:         db,
		Authorizer: verifier,
		Redis:      rdb,
		Events:     events,
		Log:        log,
		Cache:      cfg.Cache,
		RateLimit:  cfg.RateLimit,
		Metrics:    cfg.Metrics,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()
	log.WithFields(logrus.Fields{"addr": addr, "production": cfg.Production()}).Info("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
