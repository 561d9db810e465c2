package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/palma21/yt-analysis-bot/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMonitor is a mock implementation of the monitoring service
type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) RunMonitoring(ctx context.Context) (*models.RunResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*models.RunResult)
	return result, args.Error(1)
}

func (m *MockMonitor) GetMetrics() string {
	return m.Called().String(0)
}

type fixedWindow bool

func (w fixedWindow) Allows(time.Time) bool { return bool(w) }

func serve(h *Handler, method, target string) (*httptest.ResponseRecorder, monitorResponse) {
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body monitorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHandler_Index(t *testing.T) {
	rec, _ := serve(NewHandler(&MockMonitor{}, nil, time.Minute), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, banner, rec.Body.String())
}

func TestHandler_Health(t *testing.T) {
	h := NewHandler(&MockMonitor{}, nil, time.Minute)
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec, _ := serve(h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","timestamp":"2024-01-02T03:04:05Z"}`, rec.Body.String())
}

func TestHandler_Metrics(t *testing.T) {
	monitor := &MockMonitor{}
	monitor.On("GetMetrics").Return(`{"runs":3}`)

	rec, _ := serve(NewHandler(monitor, nil, time.Minute), http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"runs":3}`, rec.Body.String())
}

func TestHandler_Monitor(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		result     *models.RunResult
		err        error
		wantStatus int
		wantBody   monitorResponse
	}{
		{
			name:       "Processed videos",
			method:     http.MethodPost,
			result:     &models.RunResult{RunID: "r1", Found: 2, Processed: 1, Failed: 1},
			wantStatus: http.StatusOK,
			wantBody:   monitorResponse{Status: "success", Message: "Procesados 1 videos", Processed: 1, Failed: 1, TotalFound: 2, RunID: "r1"},
		},
		{
			name:       "Nothing new",
			method:     http.MethodGet,
			result:     &models.RunResult{RunID: "r2"},
			wantStatus: http.StatusOK,
			wantBody:   monitorResponse{Status: "success", Message: "No hay videos nuevos", RunID: "r2"},
		},
		{
			name:       "Feed unavailable",
			method:     http.MethodGet,
			result:     &models.RunResult{RunID: "r3", FeedError: "source unavailable: youtube: timeout"},
			wantStatus: http.StatusBadGateway,
			wantBody:   monitorResponse{Status: "error", Error: "source unavailable: youtube: timeout", RunID: "r3"},
		},
		{
			name:       "Run in progress",
			method:     http.MethodPost,
			err:        monitoring.ErrRunInProgress,
			wantStatus: http.StatusConflict,
			wantBody:   monitorResponse{Status: "busy", Error: monitoring.ErrRunInProgress.Error()},
		},
		{
			name:       "Unexpected failure",
			method:     http.MethodPost,
			err:        fmt.Errorf("wrapped: %w", errors.New("boom")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   monitorResponse{Status: "error", Error: "wrapped: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := &MockMonitor{}
			monitor.On("RunMonitoring", mock.Anything).Return(tt.result, tt.err).Once()

			rec, body := serve(NewHandler(monitor, nil, time.Minute), tt.method, "/monitor")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, body)
			monitor.AssertExpectations(t)
		})
	}
}

func TestHandler_Monitor_OutsideWindow(t *testing.T) {
	monitor := &MockMonitor{}

	rec, body := serve(NewHandler(monitor, fixedWindow(false), time.Minute), http.MethodGet, "/monitor")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "skipped", body.Status)
	monitor.AssertNotCalled(t, "RunMonitoring", mock.Anything)
}

func TestHandler_Monitor_ForceBypassesWindow(t *testing.T) {
	monitor := &MockMonitor{}
	monitor.On("RunMonitoring", mock.Anything).Return(&models.RunResult{RunID: "forced"}, nil).Once()

	rec, body := serve(NewHandler(monitor, fixedWindow(false), time.Minute), http.MethodPost, "/monitor?force=true")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "forced", body.RunID)
	monitor.AssertExpectations(t)
}

func TestHandler_Monitor_RunHasDeadline(t *testing.T) {
	monitor := &MockMonitor{}
	monitor.On("RunMonitoring", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Minute
	})).Return(&models.RunResult{}, nil).Once()

	rec, _ := serve(NewHandler(monitor, fixedWindow(true), time.Minute), http.MethodGet, "/monitor")

	require.Equal(t, http.StatusOK, rec.Code)
	monitor.AssertExpectations(t)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	rec, _ := serve(NewHandler(&MockMonitor{}, nil, time.Minute), http.MethodDelete, "/monitor")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
