package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eventhorizon/src-server/store"
	"eventhorizon/src-server/suggest"
)

type Config struct {
	port string

	databasePath string
	storageKey   string

	geminiApiKey  string
	geminiModel   string
	geminiBaseURL string

	location *time.Location
	logLevel slog.Level
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./eventhorizon.db"
			}
			if databasePath != ":memory:" {
				databasePath = filepath.Clean(databasePath)
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		storageKey: func() string {
			storageKey := os.Getenv("STORAGE_KEY")
			if storageKey == "" {
				storageKey = store.DefaultKey
			}
			slog.Debug("env", "STORAGE_KEY", storageKey)
			return storageKey
		}(),

		geminiApiKey: func() string {
			apiKey := os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				apiKey = os.Getenv("API_KEY")
			}
			if apiKey == "" {
				slog.Warn("GEMINI_API_KEY is not set, AI suggestions are unavailable")
				return ""
			}
			slog.Debug("env", "GEMINI_API_KEY", redact(apiKey))
			return apiKey
		}(),
		geminiModel: func() string {
			geminiModel := os.Getenv("GEMINI_MODEL")
			if geminiModel == "" {
				geminiModel = suggest.DefaultModel
			}
			slog.Debug("env", "GEMINI_MODEL", geminiModel)
			return geminiModel
		}(),
		geminiBaseURL: func() string {
			baseURL := os.Getenv("GEMINI_BASE_URL")
			if baseURL == "" {
				baseURL = suggest.DefaultBaseURL
			}
			slog.Debug("env", "GEMINI_BASE_URL", baseURL)
			return baseURL
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			switch timezoneStr {
			case "":
				return time.Local
			case "UTC":
				return time.UTC
			}
			loc, err := time.LoadLocation(timezoneStr)
			if err != nil {
				slog.Warn("invalid TIMEZONE, using local timezone", "timezone", timezoneStr, "error", err)
				return time.Local
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		logLevel: ParseLogLevel(os.Getenv("LOG_LEVEL")),
	}
}

// ParseLogLevel defaults to debug.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func redact(secret string) string {
	if len(secret) <= 3 {
		return "..."
	}
	return secret[0:3] + "..."
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./eventhorizon.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get STORAGE_KEY env, default to eventhorizon_events
func (c *Config) GetStorageKey() string {
	return c.storageKey
}

// Get GEMINI_API_KEY (or API_KEY) env, empty when unset
func (c *Config) GetGeminiApiKey() string {
	return c.geminiApiKey
}

// Get GEMINI_MODEL env
func (c *Config) GetGeminiModel() string {
	return c.geminiModel
}

// Get GEMINI_BASE_URL env
func (c *Config) GetGeminiBaseURL() string {
	return c.geminiBaseURL
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}
