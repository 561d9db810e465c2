package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/palma21/yt-analysis-bot/internal/monitoring"
	"github.com/sirupsen/logrus"
)

const banner = "YouTube Monitor Bot - Running ✅"

// Monitor is the part of the monitoring service the HTTP surface needs
type Monitor interface {
	RunMonitoring(ctx context.Context) (*models.RunResult, error)
	GetMetrics() string
}

// Window decides whether an unforced run may start now
type Window interface {
	Allows(t time.Time) bool
}

type monitorResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed,omitempty"`
	TotalFound int    `json:"total_found"`
	RunID      string `json:"run_id,omitempty"`
}

// Handler serves the health, metrics and trigger endpoints
type Handler struct {
	monitor    Monitor
	window     Window
	runTimeout time.Duration
	now        func() time.Time
}

// NewHandler creates the HTTP handlers. A nil window allows every run.
func NewHandler(monitor Monitor, window Window, runTimeout time.Duration) *Handler {
	return &Handler{
		monitor:    monitor,
		window:     window,
		runTimeout: runTimeout,
		now:        time.Now,
	}
}

// Router returns the routes of the bot
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", h.index).Methods("GET")
	router.HandleFunc("/health", h.health).Methods("GET")
	router.HandleFunc("/metrics", h.metrics).Methods("GET")
	router.HandleFunc("/monitor", h.trigger).Methods("GET", "POST")
	return router
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(banner))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + h.now().Format(time.RFC3339) + `"}`))
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.monitor.GetMetrics()))
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !force && h.window != nil && !h.window.Allows(h.now()) {
		writeJSON(w, http.StatusOK, monitorResponse{
			Status:  "skipped",
			Message: "Fuera del horario activo",
		})
		return
	}

	// a client disconnect must not abort a run half way
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.runTimeout)
	defer cancel()

	result, err := h.monitor.RunMonitoring(ctx)
	switch {
	case errors.Is(err, monitoring.ErrRunInProgress):
		writeJSON(w, http.StatusConflict, monitorResponse{Status: "busy", Error: err.Error()})
		return
	case err != nil:
		logrus.Errorf("Manual monitoring run failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, monitorResponse{Status: "error", Error: err.Error()})
		return
	}

	response := monitorResponse{
		Status:     "success",
		Processed:  result.Processed,
		Failed:     result.Failed,
		TotalFound: result.Found,
		RunID:      result.RunID,
	}
	switch {
	case result.FeedError != "":
		response.Status = "error"
		response.Error = result.FeedError
	case result.Found == 0:
		response.Message = "No hay videos nuevos"
	default:
		response.Message = fmt.Sprintf("Procesados %d videos", result.Processed)
	}

	status := http.StatusOK
	if result.FeedError != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}
