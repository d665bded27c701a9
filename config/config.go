package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	S3        S3Config
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string // postgres (default) or mysql
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// Enabled reports whether product images go to S3 instead of local disk.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type StorageConfig struct {
	LocalDir     string // used when no S3 bucket is configured
	PublicPrefix string // URL prefix the local directory is served under
	MaxImageSize int64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis server was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RateLimitConfig struct {
	AuthRequests int
	Window       time.Duration
}

type SchedulerConfig struct {
	CatalogStatsSpec string
	LowStockLevel    int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			LogLevel:        getEnv("LOG_LEVEL", ""),
			ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "shop"),
			Password:     getEnv("DB_PASSWORD", "shop"),
			DBName:       getEnv("DB_NAME", "shopfront"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "100"), 100),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: parseDuration(getEnv("JWT_EXPIRY", "1h"), time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Storage: StorageConfig{
			LocalDir:     getEnv("UPLOAD_DIR", "./uploads"),
			PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			MaxImageSize: int64(parseInt(getEnv("MAX_IMAGE_SIZE", "5242880"), 5<<20)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		RateLimit: RateLimitConfig{
			AuthRequests: parseInt(getEnv("RATE_LIMIT_AUTH_REQUESTS", "20"), 20),
			Window:       parseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"), time.Minute),
		},
		Scheduler: SchedulerConfig{
			CatalogStatsSpec: getEnv("CATALOG_STATS_SCHEDULE", "@every 5m"),
			LowStockLevel:    parseInt(getEnv("LOW_STOCK_LEVEL", "5"), 5),
		},
	}

	if cfg.JWT.Secret == "" && cfg.IsDevelopment() {
		log.Println("JWT_SECRET not set, using an insecure development secret")
		cfg.JWT.Secret = "dev-insecure-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run safely with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.RateLimit.AuthRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_REQUESTS must be positive"))
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "mysql" {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}
	if c.Storage.MaxImageSize <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MySQLDSN is the go-sql-driver DSN used when Driver is "mysql".
func (c *DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %q, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		log.Printf("Invalid integer %q, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
