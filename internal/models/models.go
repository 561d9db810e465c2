package models

import (
	"sort"
	"time"
)

// Video represents a single upload found in the channel feed
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Published   string    `json:"published"` // raw feed value
	PublishedAt time.Time `json:"published_at"`
}

// SeenSet holds the IDs of videos that were already notified
type SeenSet map[string]struct{}

// NewSeenSet creates a set containing the given IDs
func NewSeenSet(ids ...string) SeenSet {
	set := make(SeenSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Has reports whether id was already processed
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks id as processed
func (s SeenSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Len returns the number of processed IDs
func (s SeenSet) Len() int {
	return len(s)
}

// IDs returns the processed IDs in lexical order
func (s SeenSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State is the persisted form of the seen-set
type State struct {
	ProcessedVideos []string `json:"processed_videos"`
	LastUpdated     string   `json:"last_updated"`
}

// RunResult summarizes a single monitoring run
type RunResult struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Found     int           `json:"total_found"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	FeedError string        `json:"feed_error,omitempty"`
	SaveError string        `json:"save_error,omitempty"`
}
