package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion        string
	AWSEndpointURL   string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID   string
	AWSSecretKey     string
	DynamoUsersTable string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	OTPTTL          time.Duration // initial code, set on register
	ResendOTPTTL    time.Duration // replacement code, set on resend
	RegistrationTTL time.Duration // pending registration payload

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:   getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoUsersTable: getEnv("DYNAMO_TABLE_USERS", "users"),

		JWTAccessSecret:  getEnv("ACCESS_TOKEN_SECRET", "secret"),
		JWTRefreshSecret: getEnv("REFRESH_TOKEN_SECRET", "refresh_secret"),
		AccessTokenTTL:   time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		RefreshTokenTTL:  time.Duration(getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,

		OTPTTL:          time.Duration(getEnvInt("OTP_TTL_SECONDS", 150)) * time.Second,
		ResendOTPTTL:    time.Duration(getEnvInt("RESEND_OTP_TTL_SECONDS", 120)) * time.Second,
		RegistrationTTL: time.Duration(getEnvInt("REGISTRATION_TTL_SECONDS", 600)) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@eventure.io"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
