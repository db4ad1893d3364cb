package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort         string
	AppMode         string
	ShutdownTimeout time.Duration

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	JWTSecret        string
	JWTExpiryMin     int
	BcryptWorkFactor int

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RateLimitAuth     int
	RateLimitMessages int

	// RateLimitCleanup is the cron schedule for pruning in-memory limiter
	// buckets when redis is disabled.
	RateLimitCleanup string

	CORSAllowedOrigins []string

	// RequireUserAuth guards the /users routes; the message lists under
	// /users/:username additionally require the caller to be that user.
	RequireUserAuth bool
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		AppMode:            getEnv("APP_MODE", "debug"),
		ShutdownTimeout:    time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SEC", 5)) * time.Second,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "messagely"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		JWTExpiryMin:       getEnvAsInt("JWT_EXPIRY_MIN", 60),
		BcryptWorkFactor:   getEnvAsInt("BCRYPT_WORK_FACTOR", 12),
		RedisEnabled:       getEnvAsBool("REDIS_ENABLED", true),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RateLimitAuth:      getEnvAsInt("RATE_LIMIT_AUTH", 10),
		RateLimitMessages:  getEnvAsInt("RATE_LIMIT_MESSAGES", 60),
		RateLimitCleanup:   getEnv("RATE_LIMIT_CLEANUP", "@every 10m"),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RequireUserAuth:    getEnvAsBool("REQUIRE_USER_AUTH", false),
	}
}

// DSN returns the connection string handed to the pgx driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSlice splits a comma separated value, dropping empty entries.
func getEnvAsSlice(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
