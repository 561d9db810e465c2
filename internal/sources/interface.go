package sources

import (
	"context"
	"time"

	"github.com/palma21/yt-analysis-bot/internal/models"
)

// Source defines the contract for feeds that publish videos
type Source interface {
	GetName() string
	// FetchNew returns the entries not in seen, oldest first. ref is the
	// reference time for the same-day filter.
	FetchNew(ctx context.Context, seen models.SeenSet, ref time.Time) ([]models.Video, error)
}
