package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"traka/internal/config"
	"traka/internal/directory"
	"traka/internal/dispatch"
	"traka/internal/feed"
	"traka/internal/handlers"
	"traka/internal/ledger"
	"traka/internal/middleware"
	"traka/internal/otp"
	fsrepo "traka/internal/repositories/firestore"
	"traka/internal/retention"
	"traka/internal/triggers"
	"traka/internal/utils"
	"traka/pkg/billing"
	"traka/pkg/cache"
	"traka/pkg/database"
	"traka/pkg/logger"
	"traka/pkg/mailer"
	"traka/pkg/push"
	"traka/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := database.NewClients(ctx, cfg.Firestore)
	if err != nil {
		appLogger.Fatalf("Failed to initialize Firebase clients: %v", err)
	}
	defer clients.Close()

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	provider, err := push.NewFCMProvider(ctx, clients.App)
	if err != nil {
		appLogger.Fatalf("Failed to initialize FCM: %v", err)
	}

	verifier, err := buildVerifier(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize purchase verifier: %v", err)
	}

	smtpMailer := mailer.NewSMTPMailer(&mailer.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.FromEmail,
		FromName:  cfg.SMTP.FromName,
		TLS:       cfg.SMTP.TLS,
	})

	// Repositories.
	userRepo := fsrepo.NewUserRepository(clients.Firestore)
	orderRepo := fsrepo.NewOrderRepository(clients.Firestore)
	codeRepo := fsrepo.NewCodeRepository(clients.Firestore)
	violationRepo := fsrepo.NewViolationRepository(clients.Firestore)
	voiceCallRepo := fsrepo.NewVoiceCallRepository(clients.Firestore)
	appConfigRepo := fsrepo.NewAppConfigRepository(clients.Firestore)

	// Domain services.
	dispatcher := dispatch.NewDispatcher(userRepo, orderRepo, provider, appLogger)
	accountant := ledger.NewAccountant(
		userRepo, orderRepo, violationRepo, appConfigRepo, verifier, cfg.Billing.PackageName, appLogger)
	otpService := otp.NewService(
		otp.NewStore(codeRepo, cfg.Security.OTPExpiry), userRepo, smtpMailer, clients.Auth, appLogger)
	sweeper := retention.NewSweeper(userRepo, orderRepo, voiceCallRepo, clients.Auth, appLogger)
	directoryService := directory.NewService(userRepo)

	// Change feed.
	router := feed.NewRouter(appLogger)
	triggers.New(dispatcher, accountant, otpService, sweeper, appLogger).Register(router)
	source := feed.NewFirestoreSource(clients.Firestore, appLogger, triggers.Watches()...)
	go func() {
		if err := source.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.WithError(err).Error("Change feed stopped")
		}
	}()

	// Retention schedule.
	scheduler := retention.NewScheduler(appLogger)
	scheduler.Add("contribution_exempt_sweep", cfg.Scheduler.ExemptSweepInterval, func(ctx context.Context) error {
		_, err := accountant.RunExemptionSweep(ctx)
		return err
	})
	scheduler.Add("scheduled_account_sweep", cfg.Scheduler.AccountSweepInterval, sweeper.SweepScheduledAccounts)
	scheduler.Add("stale_voice_call_sweep", cfg.Scheduler.VoiceCallSweepInterval, sweeper.SweepStaleVoiceCalls)
	scheduler.Add("completed_chat_purge", cfg.Scheduler.ChatPurgeInterval, sweeper.PurgeCompletedOrderChats)
	go scheduler.Start(ctx)

	// HTTP surface.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.Fatalf("Invalid trusted proxy list: %v", err)
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.LoggingMiddleware(appLogger))

	v1 := engine.Group("/api/v1")
	routes.Setup(v1, &routes.Dependencies{
		Auth:     handlers.NewAuthHandler(otpService),
		Payments: handlers.NewPaymentHandler(accountant),
		Contacts: handlers.NewContactHandler(directoryService),
		Admin:    handlers.NewAdminHandler(dispatcher, accountant),
		Verifier: clients.Auth,
		Users:    userRepo,
		Cache:    redisCache,
		Security: cfg.Security,
		Logger:   appLogger,
	})

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": utils.AppVersion,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: engine,
	}

	go func() {
		appLogger.Infof("Starting server on port %d", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}
}

func buildVerifier(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (billing.PurchaseVerifier, error) {
	if cfg.Billing.SkipVerification {
		if config.IsProduction() {
			return nil, errors.New("purchase verification cannot be skipped in production")
		}
		appLogger.Warn("Purchase verification disabled, accepting any non-empty token")
		return billing.NewStaticVerifier(), nil
	}
	return billing.NewGooglePlayVerifier(ctx, cfg.Billing.CredentialsFile)
}
