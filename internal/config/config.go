package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	BaseURL string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	NATSURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string

	// VerifyEmailEnabled gates every authenticated endpoint behind a
	// confirmed email when true.
	VerifyEmailEnabled bool
	VerifyTTL          time.Duration
	ExternalTimeout    time.Duration
}

// Load reads configuration from the environment, optionally seeded from a
// .env file the way the local dev setup expects.
func Load() *Config {
	godotenv.Load(".env.dev")

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       getenv("AWS_REGION", "us-east-1"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		S3AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") == "true",

		NATSURL: getenv("NATS_URL", "nats://localhost:4222"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getenv("FROM_EMAIL", "no-reply@localhost"),

		VerifyEmailEnabled: getenv("VERIFY_EMAIL_ENABLED", "true") == "true",
		VerifyTTL:          getenvDuration("VERIFY_TTL", 3*time.Minute),
		ExternalTimeout:    getenvDuration("EXTERNAL_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
