package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evently/config"
	_ "evently/docs"
	"evently/internal/adapters/auth"
	"evently/internal/adapters/clerk"
	"evently/internal/adapters/email"
	redisadapter "evently/internal/adapters/redis"
	"evently/internal/adapters/svix"
	"evently/internal/database"
	delivery "evently/internal/delivery/http"
	"evently/internal/delivery/http/controllers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/domain"
	"evently/internal/repository/postgres"
	"evently/internal/services"
)

// @title Evently API
// @version 1.0
// @description Event listings backed by Clerk user sync.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.NewManager(database.Options{
		DSN:             cfg.DBUrl,
		ConnectTimeout:  cfg.DBConnectTimeout,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger)
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "err", err)
		}
	}()
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database schema is up to date")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	tx := postgres.NewTransactor(db)

	// Adapters
	idp, err := clerk.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.ClerkAPIURL, cfg.ClerkSecretKey, logger)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}
	tokenVerifier, err := auth.NewSessionVerifier(cfg.ClerkJWTKey, cfg.ClerkAuthorizedParties)
	if err != nil {
		return fmt.Errorf("session verifier: %w", err)
	}
	webhookVerifier, err := svix.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook verifier: %w", err)
	}
	deduper, closeRedis, err := newDeduper(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}

	// Services
	emailService := services.NewEmailService(mailer, renderer, logger)
	userSync := services.NewUserSyncService(userRepo, tx, idp, emailService, logger, cfg.RequestTimeout)
	eventService := services.NewEventService(eventRepo, categoryRepo, tx, cfg.EventScheduleDefaults, cfg.RequestTimeout)

	// HTTP
	router := delivery.NewRouter(delivery.Controllers{
		Webhook:  controllers.NewWebhookController(logger, db, webhookVerifier, deduper, userSync),
		Event:    controllers.NewEventController(logger, eventService, userSync),
		Category: controllers.NewCategoryController(logger, eventService),
		User:     controllers.NewUserController(logger, userSync),
		Health:   controllers.NewHealthController(logger, db),
	}, tokenVerifier, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newDeduper connects to Redis when REDIS_ADDR is set. Without it every
// delivery is processed.
func newDeduper(cfg *config.Config, logger *slog.Logger) (domain.DeliveryDeduper, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is not set; webhook deliveries are not de-duplicated")
		return redisadapter.NoopDeduper{}, func() {}, nil
	}
	client, err := redisadapter.NewClient(cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return redisadapter.NewDeduper(client, cfg.WebhookClaimTTL, cfg.WebhookDedupTTL), client.Close, nil
}
