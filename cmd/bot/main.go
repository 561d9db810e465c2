package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/palma21/yt-analysis-bot/internal/app"
	"github.com/palma21/yt-analysis-bot/internal/config"
	"github.com/palma21/yt-analysis-bot/internal/scheduler"
	"github.com/palma21/yt-analysis-bot/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Infof("Starting YouTube analysis bot for feed %s", cfg.FeedURL)

	bot, err := app.New(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	defer bot.Close()

	if cfg.EnableScheduler {
		schedulerService := scheduler.NewService(bot.Monitoring, cfg.CheckSchedule, bot.Window, cfg.Location(), cfg.RunTimeout)
		if err := schedulerService.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer schedulerService.Stop()
	} else {
		logrus.Info("Scheduler disabled, runs are triggered through /monitor")
	}

	// /monitor answers once the run is over, so writes may take up to RunTimeout
	handler := server.NewHandler(bot.Monitoring, bot.Window, cfg.RunTimeout)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RunTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
