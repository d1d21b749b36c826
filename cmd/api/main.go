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

	"github.com/joho/godotenv"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
	s3infra "github.com/marketplace-api/internal/infrastructure/s3"
	"github.com/marketplace-api/internal/infrastructure/smtp"
	"github.com/marketplace-api/internal/infrastructure/sns"
	transporthttp "github.com/marketplace-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional, auth endpoints answer 503 if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store (optional, upload endpoints answer 503 when unavailable).
	var s3Store *s3infra.Store
	if s3Client, err := s3infra.NewClient(cfg); err == nil {
		s3Store = s3infra.NewStore(s3Client, cfg.S3BucketName)
	} else {
		log.Printf("WARN: S3 store not available, uploads disabled: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional, phone OTP dispatch answers 503 without it).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		AccountRepo: dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		SessionRepo: dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		OTPRepo:     dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		RoleRepo:    dynamo.NewRoleRepo(dynamoClient, cfg.DynamoTables.Roles),
		AssetRepo:   dynamo.NewAssetRepo(dynamoClient, cfg.DynamoTables.Assets),
		DeviceRepo:  dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		S3Store:     s3Store,
		Mailer:      mailer,
		SMSSender:   smsSender,
		JWTProvider: jwtProvider,
	}

	// Seed the System roles before the first request can touch the registry.
	if err := deps.RoleService().EnsureSystemRoles(context.Background()); err != nil {
		log.Fatalf("seed system roles: %v", err)
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
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
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
