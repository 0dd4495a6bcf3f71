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

	"github.com/eventure/identity-api/internal/config"
	"github.com/eventure/identity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/eventure/identity-api/internal/infrastructure/jwt"
	redisstore "github.com/eventure/identity-api/internal/infrastructure/redis"
	"github.com/eventure/identity-api/internal/infrastructure/smtp"
	"github.com/eventure/identity-api/internal/infrastructure/sns"
	transporthttp "github.com/eventure/identity-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap the DynamoDB users table (creates it if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoUsersTable)

	// Redis holds all pending-registration and OTP state; fail fast if it's
	// unreachable since the registration flow cannot work without it.
	redisClient := redisstore.NewClient(cfg)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis unreachable at %s: %v", cfg.RedisAddr, err)
	}

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoUsersTable),
		Sessions:    redisstore.NewStore(redisClient),
		Mailer:      smtp.NewMailer(cfg),
		SMSSender:   smsSender,
		JWTProvider: jwtinfra.NewProvider(cfg),
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
