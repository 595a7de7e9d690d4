package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloodbridge/backend/internal/config"
	"github.com/bloodbridge/backend/internal/handler"
	adminHandler "github.com/bloodbridge/backend/internal/handler/admin"
	donorHandler "github.com/bloodbridge/backend/internal/handler/donor"
	emergencyHandler "github.com/bloodbridge/backend/internal/handler/emergency"
	otpHandler "github.com/bloodbridge/backend/internal/handler/otp"
	"github.com/bloodbridge/backend/internal/middleware"
	"github.com/bloodbridge/backend/internal/notify"
	"github.com/bloodbridge/backend/internal/repository/postgres"
	"github.com/bloodbridge/backend/internal/router"
	authService "github.com/bloodbridge/backend/internal/service/auth"
	dispatchService "github.com/bloodbridge/backend/internal/service/dispatch"
	donorService "github.com/bloodbridge/backend/internal/service/donor"
	emergencyService "github.com/bloodbridge/backend/internal/service/emergency"
	otpService "github.com/bloodbridge/backend/internal/service/otp"
	ratelimitService "github.com/bloodbridge/backend/internal/service/ratelimit"
	"github.com/bloodbridge/backend/internal/worker"
	"github.com/bloodbridge/backend/pkg/logger"
	"github.com/bloodbridge/backend/pkg/messaging"
	redisBroker "github.com/bloodbridge/backend/pkg/messaging/redis"
	"github.com/bloodbridge/backend/pkg/metrics"
	"github.com/bloodbridge/backend/pkg/security"
	"github.com/bloodbridge/backend/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := *appLogger.Zerolog()

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics("bloodbridge")

	donorRepo := postgres.NewDonorRepository(db, appMetrics)
	emergencyRepo := postgres.NewEmergencyRepository(db, appMetrics)

	mail := notify.NewSMTPTransport(notify.SMTPConfig{
		Host:     cfg.Secrets.SMTPHost,
		Port:     cfg.Secrets.SMTPPort,
		Username: cfg.Secrets.SMTPUser,
		Password: cfg.Secrets.SMTPPassword,
	})
	sms := notify.NewTwilioTransport(notify.TwilioConfig{
		AccountSID: cfg.Secrets.TwilioSID,
		AuthToken:  cfg.Secrets.TwilioToken,
		From:       cfg.Secrets.TwilioFrom,
	})

	// The broker is optional: without Redis the API still serves, it
	// just stops publishing alert events.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &zl)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, alert events disabled")
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	limiter := ratelimitService.NewService(emergencyRepo, ratelimitService.Config{
		Cooldown:     cfg.Alert.Cooldown(),
		MaxPerHour:   cfg.Alert.MaxPerHour,
		HistoryDepth: cfg.Alert.HistoryDepth,
	}, appMetrics, zl)
	dispatcher := dispatchService.NewService(mail, appMetrics, zl)
	emergencySvc := emergencyService.NewService(donorRepo, emergencyRepo, limiter, dispatcher, broker, emergencyService.Config{
		MaxRecipients: cfg.Alert.MaxRecipients,
		Dispatch: dispatchService.Options{
			MaxWorkers: cfg.Alert.MaxWorkers,
			SendDelay:  cfg.Alert.SendDelay(),
		},
	}, zl)
	otpSvc := otpService.NewService(time.Duration(cfg.OTP.ExpiryMinutes)*time.Minute, appMetrics, zl)
	donorSvc := donorService.NewService(donorRepo, hasher, zl)
	authSvc, err := authService.NewService(cfg.Secrets, cfg.JWT, hasher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize admin auth")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go otpSvc.StartJanitor(ctx, time.Minute)

	retention := worker.NewRetentionWorker(emergencyRepo, cfg.Alert.RetentionDays, 24*time.Hour, zl)
	go retention.Start(ctx)

	r := router.NewRouter(
		handler.NewHandler(db),
		router.Config{
			RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
			RateLimitBurst: cfg.Server.RateLimitBurst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
		},
		emergencyHandler.NewHandler(emergencySvc),
		otpHandler.NewHandler(otpSvc, sms, zl),
		donorHandler.NewHandler(donorSvc),
		adminHandler.NewHandler(authSvc, donorSvc),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
