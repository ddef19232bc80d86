package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/imroc/req/v3"
	"github.com/rs/zerolog/log"

	"github.com/skynet2/finance-reconciler/pkg/api"
	"github.com/skynet2/finance-reconciler/pkg/config"
	"github.com/skynet2/finance-reconciler/pkg/database"
	"github.com/skynet2/finance-reconciler/pkg/enrichment"
	"github.com/skynet2/finance-reconciler/pkg/ingest"
	"github.com/skynet2/finance-reconciler/pkg/jobs"
	"github.com/skynet2/finance-reconciler/pkg/logger"
	"github.com/skynet2/finance-reconciler/pkg/matcher"
	"github.com/skynet2/finance-reconciler/pkg/normalizer"
	"github.com/skynet2/finance-reconciler/pkg/notifications"
	"github.com/skynet2/finance-reconciler/pkg/printer"
	"github.com/skynet2/finance-reconciler/pkg/truelayer"
	"github.com/skynet2/finance-reconciler/pkg/vault"
	"github.com/skynet2/finance-reconciler/pkg/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lg, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build logger")
	}

	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background(), lg), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.PostgresDSN)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to open database")
	}

	if err = database.Migrate(db); err != nil {
		lg.Fatal().Err(err).Msg("failed to migrate")
	}

	encryptor, err := vault.NewEncryptor(cfg.TokenEncryptionKey)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to build token encryptor")
	}

	bankFeed := truelayer.NewClient(
		cfg.TrueLayerClient(),
		truelayer.NewHTTPClient(cfg.TrueLayer.RetryCount, cfg.TrueLayer.MinBackoff, cfg.TrueLayer.MaxBackoff),
	)

	tokenVault := vault.NewVault(
		vault.NewGormRepo(db),
		bankFeed,
		encryptor,
		vault.WithRefreshBuffer(cfg.RefreshBuffer),
	)

	ingestSvc := ingest.NewService(
		ingest.NewStore(db),
		tokenVault,
		bankFeed,
		normalizer.NewRegistry(cfg.DefaultCurrency),
	)

	matchCfg, err := cfg.Matcher()
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid matching config")
	}

	engine, err := matcher.NewEngine(matcher.NewGormRepo(db), matchCfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to build matching engine")
	}

	queue := enrichment.NewQueue(
		enrichment.NewGormRepo(db, cfg.EnrichmentMaxRetries),
		enrichment.DefaultPricing,
		cfg.EnrichmentConcurrency,
		enrichment.WithBatchLimit(cfg.EnrichmentBatchSize),
	)

	if err = registerProviders(ctx, cfg, queue); err != nil {
		lg.Fatal().Err(err).Msg("failed to register enrichment providers")
	}

	broker := jobs.NewBroker()
	runner := jobs.NewRunner(ctx, jobs.NewGormStore(db), broker, cfg.JobWorkers)

	runner.Register(database.JobTypeSync, jobs.SyncHandler(ingestSvc))
	runner.Register(database.JobTypeImport, jobs.ImportHandler(ingestSvc))
	runner.Register(database.JobTypeMatch, jobs.MatchHandler(engine))
	runner.Register(database.JobTypeEnrich, jobs.EnrichHandler(queue))

	if err = runner.Recover(ctx); err != nil {
		lg.Fatal().Err(err).Msg("failed to recover jobs")
	}

	if cfg.TelegramEnabled() {
		events, unsubscribe := broker.Subscribe(64)
		defer unsubscribe()

		notifier := notifications.NewNotifier(
			notifications.NewTelegram(cfg.TelegramBotToken, req.DefaultClient()),
			printer.NewPrinter(),
			cfg.TelegramChatID,
		)

		go notifier.Watch(ctx, events)
	}

	inbox, err := newInbox(cfg, db)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to build webhook inbox")
	}

	webhooks := webhook.NewHandler(
		webhook.NewVerifier(cfg.Webhooks(), webhook.DefaultTolerance, time.Now),
		inbox,
		api.NewSyncSubmitter(runner),
	)

	syncEvents, unsubscribeSyncs := broker.Subscribe(64)
	defer unsubscribeSyncs()

	go webhooks.Watch(ctx, syncEvents)

	if replayed, replayErr := webhooks.Replay(ctx, truelayer.ProviderID); replayErr != nil {
		lg.Err(replayErr).Msg("failed to replay webhook deliveries")
	} else if replayed > 0 {
		lg.Info().Int("count", replayed).Msg("replayed webhook deliveries")
	}

	server := api.NewServer(runner, engine, queue, tokenVault, webhooks, cfg.APIKey)

	srv := &http.Server{
		Handler:      server.Router(lg),
		Addr:         cfg.Addr(),
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			lg.Err(shutdownErr).Msg("failed to shut down http server")
		}
	}()

	lg.Info().Str("addr", srv.Addr).Msg("listening")

	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal().Err(err).Msg("http server failed")
	}

	// running jobs are failed as interrupted, queued ones wait for the next start
	runner.Close()
}
