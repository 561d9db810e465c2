package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/palma21/yt-analysis-bot/internal/notifications"
	"github.com/palma21/yt-analysis-bot/internal/sources"
	"github.com/sirupsen/logrus"
)

const saveTimeout = 30 * time.Second

// SeenStore persists the IDs of processed videos
type SeenStore interface {
	Load(ctx context.Context) (models.SeenSet, error)
	Save(ctx context.Context, seen models.SeenSet) error
}

// TranscriptFetcher returns the transcript text of a video
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Analyzer turns a transcript into the analysis text
type Analyzer interface {
	Analyze(ctx context.Context, transcript, title string) (string, error)
}

// Service runs the feed -> transcript -> analysis -> notification pipeline
type Service struct {
	seen        SeenStore
	source      sources.Source
	transcripts TranscriptFetcher
	analyzer    Analyzer
	notifier    notifications.Notifier

	running atomic.Bool
	metrics *Metrics
	mu      sync.RWMutex
	now     func() time.Time
}

// Metrics holds monitoring metrics
type Metrics struct {
	Runs            int            `json:"runs"`
	LastRun         time.Time      `json:"last_run"`
	LastRunID       string         `json:"last_run_id"`
	LastRunDuration string         `json:"last_run_duration"`
	LastFound       int            `json:"last_found"`
	LastProcessed   int            `json:"last_processed"`
	TotalProcessed  int            `json:"total_processed"`
	StageFailures   map[string]int `json:"stage_failures"`
	FeedErrors      int            `json:"feed_errors"`
	SaveErrors      int            `json:"save_errors"`
}

// NewService creates a new monitoring service
func NewService(seen SeenStore, source sources.Source, transcripts TranscriptFetcher, analyzer Analyzer, notifier notifications.Notifier) *Service {
	return &Service{
		seen:        seen,
		source:      source,
		transcripts: transcripts,
		analyzer:    analyzer,
		notifier:    notifier,
		metrics: &Metrics{
			StageFailures: make(map[string]int),
		},
		now: time.Now,
	}
}

// RunMonitoring performs a run for the current time
func (s *Service) RunMonitoring(ctx context.Context) (*models.RunResult, error) {
	return s.Run(ctx, s.now())
}

// Run processes every unseen video the feed returns for the day of ref. Item
// failures are logged and counted, they never abort the run. The only error
// returned is ErrRunInProgress.
func (s *Service) Run(ctx context.Context, ref time.Time) (*models.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	result := &models.RunResult{
		RunID:     ulid.Make().String(),
		StartedAt: start,
	}
	log := logrus.WithField("run_id", result.RunID)
	log.Info("Starting monitoring run")

	seen, err := s.seen.Load(ctx)
	if err != nil {
		log.Errorf("Failed to load processed videos, starting empty: %v", fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}
	if seen == nil {
		seen = models.NewSeenSet()
	}
	log.Infof("Loaded %d processed videos", seen.Len())

	videos, err := s.source.FetchNew(ctx, seen, ref)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, s.source.GetName(), err)
		log.Error(err)
		result.FeedError = err.Error()
		videos = nil
	}
	result.Found = len(videos)

	failures := make(map[string]int)
	for i, video := range videos {
		if ctx.Err() != nil {
			log.Warnf("Run cancelled, %d videos left unprocessed", len(videos)-i)
			break
		}

		log.WithField("video_id", video.ID).Infof("[%d/%d] Processing %s", i+1, len(videos), video.Title)
		if err := s.ProcessVideo(ctx, video); err != nil {
			result.Failed++
			var stageErr *StageError
			if errors.As(err, &stageErr) {
				failures[stageErr.Stage]++
			}
			log.WithField("video_id", video.ID).Errorf("Failed to process video: %v", err)
			continue
		}

		seen.Add(video.ID)
		result.Processed++
	}

	if result.Processed > 0 {
		// processed videos are persisted even when the run was cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		err := s.seen.Save(saveCtx, seen)
		cancel()
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
			log.Errorf("Failed to save processed videos: %v", err)
			result.SaveError = err.Error()
		}
	}

	result.Duration = s.now().Sub(start)
	s.updateMetrics(result, failures)

	log.WithFields(logrus.Fields{
		"found":     result.Found,
		"processed": result.Processed,
		"failed":    result.Failed,
	}).Infof("Monitoring run completed in %v", result.Duration)

	return result, nil
}

// ProcessVideo fetches the transcript, analyzes it and delivers the result
func (s *Service) ProcessVideo(ctx context.Context, video models.Video) error {
	transcript, err := s.transcripts.Fetch(ctx, video.ID)
	if err != nil {
		return &StageError{Stage: StageTranscript, VideoID: video.ID, Kind: ErrSourceUnavailable, Err: err}
	}

	analysis, err := s.analyzer.Analyze(ctx, transcript, video.Title)
	if err != nil {
		return &StageError{Stage: StageAnalysis, VideoID: video.ID, Kind: ErrAnalysisFailure, Err: err}
	}

	if err := s.notifier.Notify(ctx, video, analysis); err != nil {
		return &StageError{Stage: StageNotify, VideoID: video.ID, Kind: ErrDeliveryFailure, Err: err}
	}

	return nil
}

// Running reports whether a run is in progress
func (s *Service) Running() bool {
	return s.running.Load()
}

func (s *Service) updateMetrics(result *models.RunResult, failures map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Runs++
	s.metrics.LastRun = result.StartedAt
	s.metrics.LastRunID = result.RunID
	s.metrics.LastRunDuration = result.Duration.String()
	s.metrics.LastFound = result.Found
	s.metrics.LastProcessed = result.Processed
	s.metrics.TotalProcessed += result.Processed
	for stage, count := range failures {
		s.metrics.StageFailures[stage] += count
	}
	if result.FeedError != "" {
		s.metrics.FeedErrors++
	}
	if result.SaveError != "" {
		s.metrics.SaveErrors++
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
