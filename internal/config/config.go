package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName     string
	Env         string
	Host        string
	Port        int
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	SQLitePath  string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string
	ModeratorPassword  string

	CORSOrigins []string
	Debug       bool

	// Presence liveness window. Heartbeats older than this make a user
	// count as offline even while the stored flag is still true.
	PresenceTimeout time.Duration

	ChatHistoryLimit      int
	ModeratorHistoryLimit int
	MaxMessageRunes       int
}

func Load() (*Config, error) {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPass := getEnv("POSTGRES_PASSWORD", "postgres")
	dbName := getEnv("POSTGRES_DB", "prephub")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPass),
		Host:     fmt.Sprintf("%s:%s", dbHost, dbPort),
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "PrepHub API"),
		Env:         getEnv("APP_ENV", "development"),
		Host:        getEnv("HTTP_HOST", "0.0.0.0"),
		Port:        getEnvAsInt("HTTP_PORT", 8000),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: u.String(),
		SQLitePath:  getEnv("SQLITE_PATH", "prephub.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),
		ModeratorPassword:  os.Getenv("MODERATOR_PASSWORD"),

		Debug: getEnvAsBool("DEBUG", true),

		PresenceTimeout: time.Duration(getEnvAsInt("PRESENCE_TIMEOUT_MS", 2000)) * time.Millisecond,

		ChatHistoryLimit:      getEnvAsInt("CHAT_HISTORY_LIMIT", 50),
		ModeratorHistoryLimit: getEnvAsInt("MODERATOR_HISTORY_LIMIT", 500),
		MaxMessageRunes:       getEnvAsInt("MAX_MESSAGE_LENGTH", 1000),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be 'postgres' or 'sqlite', got %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if cfg.ModeratorPassword == "" {
		return nil, fmt.Errorf("MODERATOR_PASSWORD is required")
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
