package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowpayhq/flowpay/internal/config"
	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/infrastructure/cache"
	"github.com/flowpayhq/flowpay/internal/infrastructure/db"
	"github.com/flowpayhq/flowpay/internal/infrastructure/paygate"
	scheduler "github.com/flowpayhq/flowpay/internal/infrastructure/scheduler/gocron"
	"github.com/flowpayhq/flowpay/internal/interface/web"
	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	sentryEnabled := cfg.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      "prod",
			AttachStacktrace: true,
			Release:          version,
		}); err != nil {
			log.Fatal(err)
		}

		sentryLevels := []log.Level{log.ErrorLevel, log.FatalLevel, log.PanicLevel}
		sentryHook, err := sentrylogrus.New(sentryLevels, sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Fatal(err)
		}
		log.AddHook(sentryHook)

		defer func() {
			sentry.Flush(5 * time.Second)
			sentryHook.Flush(5 * time.Second)
		}()
	}

	log.Info("starting flowpay...")

	dbSvc, err := db.NewService(db.ServiceConfig{
		DbType:   cfg.DbType,
		DbConfig: []any{cfg.Datadir, nil},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	client, err := paygate.NewClient(cfg.BackendURL, cfg.APIPath, cfg.CSRFPath, cfg.Timeout())
	if err != nil {
		log.WithError(err).Fatal("failed to init backend client")
	}

	schedulerSvc := scheduler.NewScheduler()
	schedulerSvc.Start()

	queryCache := cache.New()

	checkoutSvc := application.NewCheckoutService(
		paygate.NewCheckoutService(client), schedulerSvc, cfg.PollInterval(),
	)
	merchantAPI := paygate.NewMerchantService(client)
	consoleSvc, err := application.NewConsoleService(
		merchantAPI, paygate.NewAuthService(client), dbSvc, queryCache, cfg.SettleDelay(),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init console service")
	}
	withdrawalSvc := application.NewWithdrawalService(merchantAPI, queryCache, cfg.SettleDelay())

	svc, err := web.NewService(web.Config{
		Port:           cfg.HTTPPort,
		WithSentry:     sentryEnabled,
		EnableFeedback: cfg.EnableFeedback,
		ShowBranding:   cfg.ShowBranding,
		SupportContact: cfg.SupportContact,
	}, checkoutSvc, consoleSvc, withdrawalSvc)
	if err != nil {
		log.WithError(err).Fatal("failed to init interface service")
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	svc.Stop()
	checkoutSvc.Close()
	schedulerSvc.Stop()
	queryCache.Close()
	dbSvc.Close()
	log.Exit(0)
}
