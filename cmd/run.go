package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rafflestars/application"
	"rafflestars/config"
	"rafflestars/database"
	"rafflestars/domain/entities"
	"rafflestars/domain/interfaces"
	"rafflestars/domain/services"
	"rafflestars/infrastructure"
	"rafflestars/repository"
	"rafflestars/web"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const deliveryRetryInterval = time.Minute

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.WithField("environment", cfg.Environment).Info("Starting rafflestars...")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// NATS is optional: without it, events stay local and broadcasts are dropped
	var natsClient *infrastructure.NATSClient
	var downstream interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
	if cfg.NATSServers != "" {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		publisher := infrastructure.NewNATSEventPublisher(natsClient)
		if err := publisher.EnsureEventStream(); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		downstream = publisher
	} else {
		log.Warn("NATS_SERVERS not set, domain events will not leave the process")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, downstream)

	// Telegram bot is optional in development; without it payments run
	// through the dev bridge and notifications are skipped
	var bot *tgbotapi.BotAPI
	var bridge interfaces.PaymentBridge = infrastructure.NewDevPaymentBridge()
	if cfg.TelegramBotToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}
		log.WithField("bot", bot.Self.UserName).Info("Telegram bot initialized")
		bridge = infrastructure.NewTelegramPaymentBridge(bot)
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, Telegram integration disabled")
	}

	gate, err := buildAdmissionGate(cfg)
	if err != nil {
		return err
	}

	notifier := infrastructure.NewMiniAppNotifier(natsClient, bot)

	defaults := &entities.RaffleSettings{
		RequiredParticipants: cfg.DefaultRequiredParticipants,
		BidAmount:            cfg.DefaultBidAmount,
		WinnerShare:          cfg.DefaultWinnerShare,
		OperatorShare:        1 - cfg.DefaultWinnerShare,
	}

	raffleService := services.NewRaffleService(uowFactory, gate, bridge, notifier, defaults)

	retryWorker := application.NewDeliveryRetryWorker(uowFactory, bridge, deliveryRetryInterval)
	stopRetry := retryWorker.Start(ctx)
	defer stopRetry()

	handler := web.NewHandler(raffleService)
	var webhook *web.WebhookHandler
	if bot != nil {
		webhook = web.NewWebhookHandler(raffleService, bot)
	}
	router := web.NewRouter(handler, webhook)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}

// buildAdmissionGate selects the shared Redis gate when configured, falling
// back to the in-process gate for single-instance deployments
func buildAdmissionGate(cfg *config.Config) (interfaces.AdmissionGate, error) {
	if cfg.RedisURL == "" {
		log.Info("Using in-process admission gate")
		return infrastructure.NewMemoryAdmissionGate(cfg.BidRateLimit, cfg.BidRateWindow), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	log.WithField("addr", opts.Addr).Info("Using Redis admission gate")
	return infrastructure.NewRedisAdmissionGate(client, cfg.BidRateLimit, cfg.BidRateWindow), nil
}
