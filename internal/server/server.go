// Package server exposes the forecasting pipeline over a small JSON API. The
// server imposes no wire semantics on the core; it decodes requests, invokes
// the pipeline, and serializes its outputs as-is.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/retailcast/demand-forecast/internal/config"
	"github.com/retailcast/demand-forecast/internal/pipeline"
	"github.com/retailcast/demand-forecast/pkg/cluster"
	"github.com/retailcast/demand-forecast/pkg/constants"
	"github.com/retailcast/demand-forecast/pkg/timeseries"
	"github.com/retailcast/demand-forecast/pkg/validation"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	conf        *config.Configuration
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the forecast API.
func NewHandler(logger *zap.Logger, conf *config.Configuration, maxBodySize int64, version string) http.Handler {
	return newHandlerWithClock(logger, conf, maxBodySize, version, time.Now)
}

// newHandlerWithClock lets tests pin the clock the pipeline sees.
func newHandlerWithClock(logger *zap.Logger, conf *config.Configuration, maxBodySize int64, version string, now func() time.Time) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = &config.Configuration{}
		conf.ApplyDefaults()
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, conf: conf, maxBodySize: maxBodySize, version: trimmedVersion, now: now}

	mux := http.NewServeMux()

	// Forecast API endpoint
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

// forecastRequest is the JSON body accepted by /api/forecast. Series records
// are keyed by the configured input field names. Stores and parameters are
// optional; the configuration supplies defaults.
type forecastRequest struct {
	Series       []map[string]interface{} `json:"series"`
	Stores       []cluster.Store          `json:"stores,omitempty"`
	HorizonWeeks int                      `json:"horizonWeeks,omitempty"`
	SeasonStart  string                   `json:"seasonStart,omitempty"`
}

type forecastResponse struct {
	Result   *pipeline.Result `json:"result"`
	Warnings []string         `json:"warnings,omitempty"`
	Duration string           `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req forecastRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	// Per-request overrides on a copy; the shared configuration is never
	// mutated.
	conf := *h.conf
	if req.HorizonWeeks != 0 {
		conf.Forecast.HorizonWeeks = req.HorizonWeeks
	}
	if req.SeasonStart != "" {
		conf.Forecast.SeasonStart = req.SeasonStart
	}

	records := make([]timeseries.Record, 0, len(req.Series))
	for _, row := range req.Series {
		records = append(records, timeseries.Record(row))
	}

	stores := req.Stores
	if len(stores) == 0 {
		stores = conf.StoreRoster()
	}

	result, err := pipeline.Run(h.logger, &conf, records, stores, h.now())
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	warnings := conf.ValidateConfiguration()

	h.writeJSON(w, http.StatusOK, forecastResponse{
		Result:   result,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// respondPipelineError maps the core's typed failures onto HTTP statuses:
// bad data is 422, bad parameters are 400, anything else is 500.
func (h *handler) respondPipelineError(w http.ResponseWriter, err error) {
	var validationErr *validation.ValidationError
	var argErr *validation.InvalidArgumentError
	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &argErr):
		h.respondError(w, http.StatusBadRequest, argErr.Error())
	default:
		h.logger.Error("pipeline run failed",
			zap.String("op", "server.handleForecast"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, message string) {
	h.logger.Warn("request rejected",
		zap.String("op", "server.respondError"),
		zap.Int("status", status),
		zap.String("message", message),
	)
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
