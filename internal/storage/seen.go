package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// SeenStore persists the set of processed video IDs as one JSON document
type SeenStore struct {
	backend StorageInterface
	key     string
	now     func() time.Time
}

// NewSeenStore stores the document under key in backend
func NewSeenStore(backend StorageInterface, key string) *SeenStore {
	return &SeenStore{
		backend: backend,
		key:     key,
		now:     time.Now,
	}
}

// Load returns the persisted set. The returned set is never nil: a missing
// document yields an empty set and no error, a read or parse failure yields
// an empty set and the error.
func (s *SeenStore) Load(ctx context.Context) (models.SeenSet, error) {
	data, err := s.backend.Retrieve(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logrus.Infof("No previous state at %s, starting with an empty set", s.key)
			return models.NewSeenSet(), nil
		}
		return models.NewSeenSet(), fmt.Errorf("failed to read state %s: %w", s.key, err)
	}

	var state models.State
	if err := json.Unmarshal(data, &state); err != nil {
		return models.NewSeenSet(), fmt.Errorf("failed to parse state %s: %w", s.key, err)
	}

	return models.NewSeenSet(state.ProcessedVideos...), nil
}

// Save replaces the persisted document with the full set
func (s *SeenStore) Save(ctx context.Context, seen models.SeenSet) error {
	state := models.State{
		ProcessedVideos: seen.IDs(),
		LastUpdated:     s.now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.backend.Store(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write state %s: %w", s.key, err)
	}

	logrus.Infof("Saved %d processed videos to %s", seen.Len(), s.key)
	return nil
}
