package app

import (
	"context"
	"fmt"
	"io"

	"github.com/palma21/yt-analysis-bot/internal/analysis"
	"github.com/palma21/yt-analysis-bot/internal/config"
	"github.com/palma21/yt-analysis-bot/internal/monitoring"
	"github.com/palma21/yt-analysis-bot/internal/notifications"
	"github.com/palma21/yt-analysis-bot/internal/scheduler"
	"github.com/palma21/yt-analysis-bot/internal/sources"
	"github.com/palma21/yt-analysis-bot/internal/storage"
	"github.com/palma21/yt-analysis-bot/internal/transcripts"
)

// App holds the wired components of the bot
type App struct {
	Storage     storage.StorageInterface
	Seen        *storage.SeenStore
	Source      *sources.YouTubeSource
	Transcripts *transcripts.Fetcher
	Analyzer    *analysis.Client
	Notifier    notifications.Notifier
	Monitoring  *monitoring.Service
	Window      *scheduler.Window
}

// New builds every component from cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	window, err := scheduler.ParseWindow(cfg.ActiveDays, cfg.ActiveHours, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("invalid active window: %w", err)
	}

	notifier, err := NewNotifier(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Storage:     backend,
		Seen:        storage.NewSeenStore(backend, cfg.StateKey),
		Source:      sources.NewYouTubeSource(cfg.FeedURL, cfg.FilterToday, cfg.Location()),
		Transcripts: transcripts.NewFetcher(cfg.TranscriptLanguages, cfg.TranscriptDelay),
		Analyzer:    analysis.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.MaxTranscriptChars, cfg.LLMTimeout),
		Notifier:    notifier,
		Window:      window,
	}
	a.Monitoring = monitoring.NewService(a.Seen, a.Source, a.Transcripts, a.Analyzer, a.Notifier)
	return a, nil
}

// NewNotifier returns the notifier selected by NOTIFICATION_CHANNEL
func NewNotifier(cfg *config.Config) (notifications.Notifier, error) {
	switch cfg.NotificationChannel {
	case "telegram":
		return notifications.NewTelegramNotifier(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID), nil
	case "email":
		return notifications.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.NotificationEmail), nil
	default:
		return nil, fmt.Errorf("unknown notification channel %q", cfg.NotificationChannel)
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
