package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shaparak-pay/internal/config"
	"shaparak-pay/internal/domain/ports/adapter"
	pg "shaparak-pay/internal/infra/db/postgres"
	"shaparak-pay/internal/infra/gateways"
	"shaparak-pay/internal/infra/i18n"
	"shaparak-pay/internal/infra/logging"
	"shaparak-pay/internal/infra/metrics"
	red "shaparak-pay/internal/infra/redis"
	"shaparak-pay/internal/infra/sched"
	"shaparak-pay/internal/infra/web"
	"shaparak-pay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	payRepo := pg.NewPaymentRepo(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	tracking := red.NewTrackingNumberProvider(redisClient)

	// ---- Translator ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Messages.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Gateways ----
	var gws []adapter.Gateway
	if cfg.Gateways.IranKish != nil {
		gws = append(gws, gateways.NewIranKish(*cfg.Gateways.IranKish, translator, logger))
	}
	if cfg.Gateways.Parsian != nil {
		gws = append(gws, gateways.NewParsian(*cfg.Gateways.Parsian, translator, logger))
	}
	if cfg.Gateways.Saman != nil {
		gws = append(gws, gateways.NewSaman(*cfg.Gateways.Saman, translator, logger))
	}
	registry := gateways.NewRegistry(gws...)
	logger.Info().Strs("gateways", registry.Names()).Msg("gateways registered")

	// ---- Use cases ----
	paymentUC := usecase.NewPaymentUseCase(registry, payRepo, tracking, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Stale payment expirer ----
	expirer := sched.NewPaymentExpirer(payRepo, time.Minute, 30*time.Minute, logger)
	go expirer.Run(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(paymentUC, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
