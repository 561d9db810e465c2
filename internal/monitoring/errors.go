package monitoring

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable covers feed and transcript retrieval failures
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrAnalysisFailure covers LLM errors and empty analyses
	ErrAnalysisFailure = errors.New("analysis failure")
	// ErrDeliveryFailure covers notifier errors
	ErrDeliveryFailure = errors.New("delivery failure")
	// ErrPersistenceFailure covers seen-set load and save errors
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrRunInProgress is returned when a run overlaps another one
	ErrRunInProgress = errors.New("monitoring run already in progress")
)

// Processing stages of a single video
const (
	StageTranscript = "transcript"
	StageAnalysis   = "analysis"
	StageNotify     = "notify"
)

// StageError records which stage failed for which video. It matches both
// its Kind and the underlying error with errors.Is.
type StageError struct {
	Stage   string
	VideoID string
	Kind    error
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.VideoID, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
