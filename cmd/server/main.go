package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/visioncall/calling-api/docs" // swagger spec registration
	"github.com/visioncall/calling-api/internal/api"
	"github.com/visioncall/calling-api/internal/core/service"
	mongodb "github.com/visioncall/calling-api/internal/infrastructure/db/mongo"
	redisdb "github.com/visioncall/calling-api/internal/infrastructure/db/redis"
	"github.com/visioncall/calling-api/internal/infrastructure/hash"
	"github.com/visioncall/calling-api/internal/infrastructure/mail"
	"github.com/visioncall/calling-api/internal/infrastructure/push"
	"github.com/visioncall/calling-api/internal/infrastructure/queue"
	"github.com/visioncall/calling-api/internal/infrastructure/rtc"
	"github.com/visioncall/calling-api/internal/pkg/config"
	"github.com/visioncall/calling-api/pkg/logger"
)

// @title        Calling API
// @version      1.0
// @description  Backend for the calling app: accounts, credential tokens, chat messages and push-delivered call invitations.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "calling-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":         userRepo.EnsureIndexes,
		"messages":      messageRepo.EnsureIndexes,
		"notifications": notificationRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Services ---
	hasher := hash.NewBcryptHasher(0)
	mailer := mail.NewSMTPSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Sender:   cfg.SMTP.Sender,
	})
	throttle := redisdb.NewResetThrottle(rdb, 0)

	authService := service.NewAuthService(userRepo, hasher, cfg.JWTSecret, 24*time.Hour)
	credentialService := service.NewCredentialService(userRepo, hasher, mailer, throttle, cfg.Hostname, log)
	messageService := service.NewMessageService(messageRepo, userRepo, log)
	notificationService := service.NewNotificationService(userRepo, notificationRepo, log)

	// --- Delivery pipeline ---
	sender := push.NewFCMSender(cfg.Push.Endpoint, cfg.Push.ServerKey, cfg.Push.Timeout)
	dispatcher := queue.NewDispatcher(cfg.Push.Workers, sender, notificationService, log)
	dispatcher.Start(ctx)

	mediaTokens := rtc.NewTokenProvider(cfg.RTC.Secret, cfg.RTC.TokenTTL)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Users:         userRepo,
		Auth:          authService,
		Credentials:   credentialService,
		Messages:      messageService,
		Notifications: notificationService,
		MediaTokens:   mediaTokens,
		Dispatcher:    dispatcher,
		Mongo:         db,
		Redis:         rdb,
		JWTSecret:     cfg.JWTSecret,
		Log:           log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
