package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ctoutbank/portal-outbank-sub005/internal/config"
	"github.com/ctoutbank/portal-outbank-sub005/internal/infra"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
	"github.com/ctoutbank/portal-outbank-sub005/internal/router"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
	"github.com/ctoutbank/portal-outbank-sub005/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async side effects (transition notices, mail, billing
	// sync). Handlers are wired here, at the composition root, so the pool
	// has full access to infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	billingCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	billingClient := infra.NewBillingClient(cfg.BillingWebhookURL, billingCB)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	handlers := &worker.Handlers{
		Notification: worker.NewNotificationWorker(mailer),
		Billing:      worker.NewBillingWorker(billingClient),
	}
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	// Hourly rollover of auto-renew links onto their pending cost table.
	linkRepo := repository.NewLinkRepository(db)
	marginRepo := repository.NewMarginRepository(db)
	userRepo := repository.NewUserRepository(db)
	accessSvc := service.NewAccessService(userRepo)
	snapshotSvc := service.NewSnapshotService(repository.NewSnapshotRepository(db), marginRepo)
	marginSvc := service.NewMarginService(linkRepo, marginRepo, repository.NewHistoryRepository(db), snapshotSvc, accessSvc)
	linkSvc := service.NewLinkService(linkRepo, repository.NewCostTableRepository(db), repository.NewIsoRepository(db), marginSvc, accessSvc)
	worker.StartRenewalCron(ctx, linkSvc)

	r := router.New(cfg, db, rdb, dispatcher, billingCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("outbank portal listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
