package notifications

import (
	"context"

	"github.com/palma21/yt-analysis-bot/internal/models"
)

// Notifier defines the contract for delivering an analysis
type Notifier interface {
	Notify(ctx context.Context, video models.Video, analysis string) error
}
