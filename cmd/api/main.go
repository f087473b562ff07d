package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/otp-notify-api/internal/infrastructure/jwt"
	"github.com/otp-notify-api/internal/infrastructure/memory"
	"github.com/otp-notify-api/internal/infrastructure/provider"
	"github.com/otp-notify-api/internal/pkg/phone"
	transporthttp "github.com/otp-notify-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Delivery provider (optional — graceful fallback; issuance returns 503
	// until one is configured).
	sender, err := provider.FromConfig(cfg)
	if err != nil {
		log.Printf("WARN: delivery provider not available: %v", err)
	}

	// Dispatch audit log backed by DynamoDB (optional).
	var messageLog *dynamo.MessageLogRepo
	if cfg.MessageLogEnabled {
		client, err := dynamo.NewClient(cfg)
		if err != nil {
			log.Printf("WARN: message log not available: %v", err)
		} else {
			dynamo.Bootstrap(context.Background(), client, cfg.MessageLogTable)
			messageLog = dynamo.NewMessageLogRepo(client, cfg.MessageLogTable)
		}
	}

	// JWT provider (optional — graceful fallback; admin endpoints return 503
	// without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	verifications := memory.NewVerificationStore(nil)
	verifications.StartSweep(cfg.SweepInterval)
	defer verifications.Stop()

	issueLimiter := memory.NewFixedWindowLimiter(cfg.RateLimitWindow, cfg.RateLimitMax, nil)
	issueLimiter.StartJanitor(cfg.RateLimitWindow)
	defer issueLimiter.Stop()

	deps := &transporthttp.Deps{
		Verifications: verifications,
		IssueLimiter:  issueLimiter,
		Sender:        sender,
		Normalizer:    phone.NewNormalizer(cfg.PhoneCountryCode, cfg.PhoneLocalDigits),
		MessageLog:    messageLog,
		JWTProvider:   jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, provider=%s)", cfg.AppPort, cfg.AppEnv, cfg.SMSProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
