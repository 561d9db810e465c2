package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCchannel")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://www.youtube.com/feeds/videos.xml?channel_id=UCchannel", cfg.FeedURL)
	assert.True(t, cfg.FilterToday)
	assert.Equal(t, []string{"es", "es-ES", "es-MX", "en"}, cfg.TranscriptLanguages)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 300000, cfg.MaxTranscriptChars)
	assert.Equal(t, "sonar-pro", cfg.LLMModel)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "cache.json", cfg.StateKey)
	assert.Equal(t, "0 0 * * * *", cfg.CheckSchedule)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FEED_URL", "http://localhost/feed.xml")
	t.Setenv("TRANSCRIPT_LANGUAGES", "en, fr ,")
	t.Setenv("TRANSCRIPT_DELAY", "5")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("TIMEZONE", "Europe/Madrid")
	t.Setenv("FILTER_TODAY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost/feed.xml", cfg.FeedURL)
	assert.Equal(t, []string{"en", "fr"}, cfg.TranscriptLanguages)
	assert.Equal(t, 5*time.Second, cfg.TranscriptDelay)
	assert.Equal(t, 90*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.FilterToday)
	assert.Equal(t, "Europe/Madrid", cfg.Location().String())
}

func TestLoad_PerplexityKeyAlias(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "pplx-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pplx-key", cfg.LLMAPIKey)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "Missing LLM key",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHAT_ID": "c"},
			want: "LLM_API_KEY",
		},
		{
			name: "Missing telegram chat",
			env:  map[string]string{"LLM_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t"},
			want: "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID",
		},
		{
			name: "Email without SMTP",
			env:  map[string]string{"LLM_API_KEY": "k", "NOTIFICATION_CHANNEL": "email", "NOTIFICATION_EMAIL": "a@b.c"},
			want: "SMTP configuration",
		},
		{
			name: "Unknown channel",
			env:  map[string]string{"LLM_API_KEY": "k", "NOTIFICATION_CHANNEL": "slack"},
			want: "NOTIFICATION_CHANNEL",
		},
		{
			name: "Unknown storage backend",
			env:  map[string]string{"LLM_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHAT_ID": "c", "STORAGE_BACKEND": "gcs"},
			want: "STORAGE_BACKEND",
		},
		{
			name: "Azure without account",
			env:  map[string]string{"LLM_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHAT_ID": "c", "STORAGE_BACKEND": "azure"},
			want: "AZURE_STORAGE_ACCOUNT",
		},
		{
			name: "Invalid timezone",
			env:  map[string]string{"LLM_API_KEY": "k", "TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHAT_ID": "c", "TIMEZONE": "Mars/Base"},
			want: "invalid TIMEZONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLocation_ZeroConfig(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.UTC, cfg.Location())
}
