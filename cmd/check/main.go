package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/palma21/yt-analysis-bot/internal/app"
	"github.com/palma21/yt-analysis-bot/internal/config"
	"github.com/sirupsen/logrus"
)

type options struct {
	EnvFile      string `long:"env-file" default:".env" description:"environment file to load"`
	Date         string `long:"date" description:"reference day (YYYY-MM-DD) for the same-day filter, defaults to today"`
	IgnoreWindow bool   `long:"ignore-window" description:"run even outside ACTIVE_DAYS/ACTIVE_HOURS"`
	Verbose      bool   `short:"v" long:"verbose" description:"debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := godotenv.Load(opts.EnvFile); err != nil {
		logrus.Debugf("No env file %s, using environment variables", opts.EnvFile)
	}

	if err := run(opts); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ref := time.Now().In(cfg.Location())
	if opts.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", opts.Date, cfg.Location())
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		ref = day.Add(12 * time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	bot, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer bot.Close()

	if !opts.IgnoreWindow && !bot.Window.Allows(time.Now()) {
		logrus.Infof("Outside the active window (%s), nothing to do", bot.Window)
		return nil
	}

	result, err := bot.Monitoring.Run(ctx, ref)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if result.FeedError != "" {
		return fmt.Errorf("feed unavailable: %s", result.FeedError)
	}
	return nil
}
