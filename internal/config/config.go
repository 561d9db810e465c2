package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const youTubeFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port       string
	Debug      bool
	RunTimeout time.Duration

	// Schedule configuration
	EnableScheduler bool
	CheckSchedule   string // cron expression with seconds
	ActiveDays      string // e.g. "mon,tue,wed,thu,fri", empty means every day
	ActiveHours     string // e.g. "8-23", end exclusive, empty means all day
	TimeZone        string

	// Feed configuration
	YouTubeChannelID string
	FeedURL          string
	FilterToday      bool

	// Transcript configuration
	TranscriptLanguages []string
	TranscriptDelay     time.Duration

	// LLM configuration
	LLMAPIURL          string
	LLMModel           string
	LLMAPIKey          string
	LLMTimeout         time.Duration
	MaxTranscriptChars int

	// Notification configuration
	NotificationChannel string // "telegram" or "email"
	TelegramBotToken    string
	TelegramChatID      string
	TelegramAPIURL      string
	NotificationEmail   string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string

	// Storage configuration
	StorageBackend          string // "file", "azure" or "sqlite"
	StateKey                string
	DataDir                 string
	SQLitePath              string
	StorageAccount          string
	StorageContainer        string
	StorageConnectionString string

	location *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		Debug:      getBoolEnv("DEBUG", false),
		RunTimeout: getDurationEnv("RUN_TIMEOUT", 30*time.Minute),

		EnableScheduler: getBoolEnv("ENABLE_SCHEDULER", true),
		CheckSchedule:   getEnv("CHECK_SCHEDULE", "0 0 * * * *"),
		ActiveDays:      getEnv("ACTIVE_DAYS", ""),
		ActiveHours:     getEnv("ACTIVE_HOURS", ""),
		TimeZone:        getEnv("TIMEZONE", "UTC"),

		YouTubeChannelID: getEnv("YOUTUBE_CHANNEL_ID", "UCmJL2llHf2tEcDAjaz-LFgQ"),
		FeedURL:          getEnv("FEED_URL", ""),
		FilterToday:      getBoolEnv("FILTER_TODAY", true),

		TranscriptLanguages: getSliceEnv("TRANSCRIPT_LANGUAGES", []string{"es", "es-ES", "es-MX", "en"}),
		TranscriptDelay:     getDurationEnv("TRANSCRIPT_DELAY", 2*time.Second),

		LLMAPIURL:          getEnv("LLM_API_URL", "https://api.perplexity.ai/chat/completions"),
		LLMModel:           getEnv("LLM_MODEL", "sonar-pro"),
		LLMAPIKey:          getEnv("LLM_API_KEY", getEnv("PERPLEXITY_API_KEY", "")),
		LLMTimeout:         getDurationEnv("LLM_TIMEOUT", 120*time.Second),
		MaxTranscriptChars: getIntEnv("MAX_TRANSCRIPT_CHARS", 300000),

		NotificationChannel: getEnv("NOTIFICATION_CHANNEL", "telegram"),
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		NotificationEmail:   getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getIntEnv("SMTP_PORT", 587),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),

		StorageBackend:          getEnv("STORAGE_BACKEND", "file"),
		StateKey:                getEnv("STATE_KEY", "cache.json"),
		DataDir:                 getEnv("DATA_DIR", "data"),
		SQLitePath:              getEnv("SQLITE_PATH", "data/state.db"),
		StorageAccount:          getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer:        getEnv("AZURE_STORAGE_CONTAINER", "yt-analysis-bot"),
		StorageConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
	}

	if cfg.FeedURL == "" && cfg.YouTubeChannelID != "" {
		cfg.FeedURL = fmt.Sprintf(youTubeFeedURL, cfg.YouTubeChannelID)
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("YOUTUBE_CHANNEL_ID or FEED_URL must be set")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	c.location = loc

	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY (or PERPLEXITY_API_KEY) is required")
	}

	if c.MaxTranscriptChars <= 0 {
		return fmt.Errorf("MAX_TRANSCRIPT_CHARS must be positive")
	}

	if len(c.TranscriptLanguages) == 0 {
		return fmt.Errorf("TRANSCRIPT_LANGUAGES must list at least one language")
	}

	switch c.NotificationChannel {
	case "telegram":
		if c.TelegramBotToken == "" || c.TelegramChatID == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for the telegram channel")
		}
	case "email":
		if c.NotificationEmail == "" || c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("NOTIFICATION_EMAIL and SMTP configuration are required for the email channel")
		}
	default:
		return fmt.Errorf("NOTIFICATION_CHANNEL must be 'telegram' or 'email'")
	}

	switch c.StorageBackend {
	case "file":
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file storage backend")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite storage backend")
		}
	case "azure":
		if c.StorageAccount == "" && c.StorageConnectionString == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT or AZURE_STORAGE_CONNECTION_STRING is required for the azure storage backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'file', 'azure' or 'sqlite'")
	}

	if c.StateKey == "" {
		return fmt.Errorf("STATE_KEY must not be empty")
	}

	return nil
}

// Location returns the configured time zone, UTC when unset
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	if c.TimeZone != "" {
		if loc, err := time.LoadLocation(c.TimeZone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("90s") or plain seconds ("90")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return defaultValue
}
