package storage

import (
	"context"
	"fmt"

	"github.com/palma21/yt-analysis-bot/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds the backend selected by STORAGE_BACKEND
func New(ctx context.Context, cfg *config.Config) (StorageInterface, error) {
	switch cfg.StorageBackend {
	case "file", "":
		logrus.Infof("Using local file storage in %s", cfg.DataDir)
		return NewLocalStorage(cfg.DataDir)
	case "sqlite":
		logrus.Infof("Using SQLite storage at %s", cfg.SQLitePath)
		return NewSQLiteStorage(cfg.SQLitePath)
	case "azure":
		if cfg.StorageConnectionString != "" {
			logrus.Infof("Using Azure Blob Storage container %s (connection string)", cfg.StorageContainer)
			return NewAzureStorageFromConnectionString(ctx, cfg.StorageConnectionString, cfg.StorageContainer)
		}
		logrus.Infof("Using Azure Blob Storage account %s, container %s", cfg.StorageAccount, cfg.StorageContainer)
		return NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
