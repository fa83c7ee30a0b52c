package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studiobook/config"
	"studiobook/cron"
	"studiobook/database"
	"studiobook/database/repository"
	"studiobook/handlers"
	"studiobook/middleware"
	"studiobook/routes"
	"studiobook/services/admin"
	"studiobook/services/booking"
	"studiobook/services/catalog"
	"studiobook/services/notification"
	"studiobook/services/payment"
	"studiobook/services/quote"
	"studiobook/services/storage"
	"studiobook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	location, err := time.LoadLocation(cfg.StudioTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid STUDIO_TIMEZONE %q: %v", cfg.StudioTimezone, err)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage.
	var (
		store     repository.BookingStore
		mediaRepo repository.MediaRepository
		dbPinger  utils.Pinger
		mongoConn *database.Mongo
	)
	switch cfg.DatabaseDriver {
	case "memory":
		logger.Warn("Using in-memory storage; bookings are lost on restart")
		store = repository.NewMemoryStore()
		mediaRepo = repository.NewMemoryMediaRepo()
	default:
		connectCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		mongoConn, err = database.Connect(connectCtx, cfg.DatabaseURL, cfg.DatabaseName, logger)
		cancel()
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		if store, err = repository.NewMongoBookingRepo(rootCtx, mongoConn.DB); err != nil {
			logger.Sugar().Fatalf("main: failed to prepare booking collections: %v", err)
		}
		if mediaRepo, err = repository.NewMongoMediaRepo(rootCtx, mongoConn.DB); err != nil {
			logger.Sugar().Fatalf("main: failed to prepare media collection: %v", err)
		}
		dbPinger = mongoConn
	}

	cacheClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	defer cacheClient.Close()

	// Domain services.
	cat := catalog.Default()
	builder := quote.NewBuilder(cat)
	quoteSvc := quote.NewService(builder, quote.NewRedisStore(cacheClient, time.Duration(cfg.QuoteTTLMinutes)*time.Minute), cfg.Currency, logger)

	var (
		gateway       booking.PaymentGateway
		webhookParser handlers.WebhookParser
	)
	if cfg.StripeSecretKey != "" {
		stripeGateway := payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.CheckoutSuccessURL,
			CancelURL:     cfg.CheckoutCancelURL,
		}, nil, logger)
		gateway, webhookParser = stripeGateway, stripeGateway
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; deposits cannot be collected online")
	}

	bookingSvc := booking.NewBookingService(store, builder, gateway, booking.Settings{
		Currency:   cfg.Currency,
		Location:   location,
		AdminEmail: cfg.AdminNotifyEmail,
	}, logger)

	authSvc := admin.NewAuthService(admin.AuthConfig{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     time.Duration(cfg.AdminTokenTTLHours) * time.Hour,
	}, logger)
	controller := admin.NewController(bookingSvc, logger)

	var files storage.FileStorage
	if cld, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger); err != nil {
		logger.Warn("Media uploads disabled", zap.Error(err))
	} else {
		files = cld
	}
	mediaSvc := storage.NewMediaService(files, mediaRepo, logger)

	// Notifications: outbox -> asynq -> worker -> mail transport.
	var sender notification.Sender = notification.NewLogSender(logger)
	if cfg.MailTransport == "smtp" {
		smtpSender, err := notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		sender = smtpSender
	}
	notifSvc, err := notification.NewDefaultNotificationService(store, sender, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	queueOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	queueClient := asynq.NewClient(queueOpts)
	defer queueClient.Close()

	dispatcher := notification.NewDispatcher(store, queueClient, time.Duration(cfg.OutboxPollSeconds)*time.Second, logger)
	go dispatcher.Run(rootCtx)

	worker := cron.NewNotificationWorker(queueOpts, notifSvc, logger)
	if err := worker.Start(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	monitor := utils.NewHealthMonitor(dbPinger, cacheClient, 30*time.Second)
	go monitor.Run(rootCtx)

	// HTTP.
	if err := middleware.SetTrustedProxies(cfg.Proxies()); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))

	handlerBundle := &handlers.HandlerBundle{
		Catalog: &handlers.CatalogHandler{Catalog: cat, Currency: cfg.Currency},
		Quotes:  &handlers.QuoteHandler{Service: quoteSvc},
		Booking: &handlers.BookingHandler{Bookings: bookingSvc, Quotes: quoteSvc, Currency: cfg.Currency},
		Webhook: &handlers.WebhookHandler{Parser: webhookParser, Bookings: bookingSvc},
		Admin:   &handlers.AdminHandler{Auth: authSvc, Controller: controller, Media: mediaSvc},
		Media:   &handlers.MediaHandler{Media: mediaSvc},
		Health:  &handlers.HealthHandler{Monitor: monitor},
	}
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins:    cfg.Origins(),
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Auth:              authSvc,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	worker.Shutdown()
	if mongoConn != nil {
		if err := mongoConn.Close(ctx); err != nil {
			logger.Warn("Failed to close MongoDB connection", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
