package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server Server
	DB     DB
	Auth   Auth
	Redis  Redis
	App    App
}

type Server struct {
	Port string
}

type DB struct {
	DSN      string
	MaxConns int
	MinConns int
}

type Auth struct {
	JWTSecret string
}

type Redis struct {
	Addr string // empty disables the redis-backed rate limiter
}

type App struct {
	Environment string
	Version     string

	// VoteRatePerMinute caps cast-vote requests per user per minute.
	VoteRatePerMinute int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: Server{
			Port: getEnv("PORT", "8080"),
		},
		DB: DB{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Auth: Auth{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Redis: Redis{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		App: App{
			Environment:       getEnv("APP_ENV", "development"),
			Version:           getEnv("APP_VERSION", "1.0.0"),
			VoteRatePerMinute: getEnvAsInt("VOTE_RATE_PER_MINUTE", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
