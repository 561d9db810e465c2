package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/palma21/yt-analysis-bot/internal/analysis"
	"github.com/palma21/yt-analysis-bot/internal/app"
	"github.com/palma21/yt-analysis-bot/internal/config"
	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/palma21/yt-analysis-bot/internal/notifications"
	"github.com/palma21/yt-analysis-bot/internal/transcripts"
)

type options struct {
	VideoID string `long:"video-id" required:"true" description:"YouTube video ID to analyze"`
	Title   string `long:"title" default:"Test video" description:"title used in the prompt and the message"`
	Send    bool   `long:"send" description:"deliver the message through the configured channel"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	fmt.Println("🎬 YouTube Analysis Bot - Full Flow Test")
	fmt.Println(strings.Repeat("=", 42))

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	if err := run(opts); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	video := models.Video{
		ID:    opts.VideoID,
		Title: opts.Title,
		Link:  "https://www.youtube.com/watch?v=" + opts.VideoID,
	}

	fmt.Println("\n📝 Fetching transcript...")
	transcript, err := transcripts.NewFetcher(cfg.TranscriptLanguages, 0).Fetch(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	fmt.Printf("   %d characters\n   %s\n", len([]rune(transcript)), analysis.TruncateRunes(transcript, 300)+"...")

	fmt.Println("\n🧠 Analyzing...")
	client := analysis.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.MaxTranscriptChars, cfg.LLMTimeout)
	result, err := client.Analyze(ctx, transcript, video.Title)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	message := notifications.BuildMessage(video, result)
	fmt.Println("\n📨 Message:")
	fmt.Println(strings.Repeat("-", 42))
	fmt.Println(message)
	fmt.Println(strings.Repeat("-", 42))
	fmt.Printf("   %d characters\n", len([]rune(message)))

	if !opts.Send {
		fmt.Println("\n💡 Run with --send to deliver it")
		return nil
	}

	notifier, err := app.NewNotifier(cfg)
	if err != nil {
		return err
	}
	if err := notifier.Notify(ctx, video, result); err != nil {
		return fmt.Errorf("delivery: %w", err)
	}
	fmt.Println("\n✅ Message sent")
	return nil
}
