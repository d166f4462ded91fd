package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/CRDigitalAndMining/go-service-template/internal/config"
	"github.com/CRDigitalAndMining/go-service-template/internal/logging"
	"github.com/CRDigitalAndMining/go-service-template/internal/timing"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler exposes the starter endpoints backed by the resolved settings.
type Handler struct {
	settings config.Settings
	logger   logging.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler bound to the resolved settings.
func NewHandler(settings config.Settings, logger logging.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		settings: settings,
		logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// infoResponse deliberately excludes the telemetry connection string.
type infoResponse struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	Description  string   `json:"description,omitempty"`
	Version      string   `json:"version"`
	APIPrefix    string   `json:"apiPrefix"`
	AllowedHosts []string `json:"allowedHosts"`
	Debug        bool     `json:"debug"`
	LogMode      string   `json:"logMode"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	defer timing.Start("health", h.logger).Stop()

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.settings.Version,
		Timestamp: h.clock(),
	})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	_ = r
	defer timing.Start("info", h.logger).Stop()

	writeJSON(w, http.StatusOK, infoResponse{
		Title:        h.settings.Title,
		Summary:      h.settings.Summary,
		Description:  h.settings.Description,
		Version:      h.settings.Version,
		APIPrefix:    h.settings.APIPrefix,
		AllowedHosts: h.settings.AllowedHosts,
		Debug:        h.settings.Debug,
		LogMode:      string(h.settings.LogMode()),
	})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
