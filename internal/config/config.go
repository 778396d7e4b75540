package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	ServerPort string

	JWTSecret string

	AccessTokenMaxAge  int
	RefreshTokenMaxAge int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	AyrshareAPIKey  string
	AyrshareBaseURL string

	SlackBotToken      string
	SlackReviewChannel string

	DispatchIntervalSec  int
	InboxSyncIntervalSec int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 900
	}

	refreshTokenMaxAge, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_MAX_AGE"))
	if err != nil || refreshTokenMaxAge <= 0 {
		refreshTokenMaxAge = 2592000
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	ayrshareBaseURL := os.Getenv("AYRSHARE_BASE_URL")
	if ayrshareBaseURL == "" {
		ayrshareBaseURL = "https://api.ayrshare.com/api"
	}

	dispatchInterval, err := strconv.Atoi(os.Getenv("DISPATCH_INTERVAL_SEC"))
	if err != nil || dispatchInterval <= 0 {
		dispatchInterval = 30
	}

	inboxSyncInterval, err := strconv.Atoi(os.Getenv("INBOX_SYNC_INTERVAL_SEC"))
	if err != nil || inboxSyncInterval <= 0 {
		inboxSyncInterval = 300
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisURL: redisURL,

		ServerPort: serverPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		AccessTokenMaxAge:  accessTokenMaxAge,
		RefreshTokenMaxAge: refreshTokenMaxAge,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		AyrshareAPIKey:  os.Getenv("AYRSHARE_API_KEY"),
		AyrshareBaseURL: ayrshareBaseURL,

		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackReviewChannel: os.Getenv("SLACK_REVIEW_CHANNEL"),

		DispatchIntervalSec:  dispatchInterval,
		InboxSyncIntervalSec: inboxSyncInterval,
	}, nil
}
