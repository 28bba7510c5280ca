package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/listing-ingestor/internal/delivery/http/request"
	"github.com/user/listing-ingestor/internal/delivery/http/response"
	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/internal/usecase"
	"github.com/user/listing-ingestor/pkg/utils"
)

const (
	maxBodyBytes       = 1 << 20
	defaultHistorySize = 20
	maxHistorySize     = 100
	healthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	ingestor usecase.Ingestor
	pingers  map[string]Pinger
	logger   *zap.Logger
}

// NewHandler wires the HTTP handlers. pingers are checked by the health endpoint, keyed by name.
func NewHandler(ingestor usecase.Ingestor, pingers map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		ingestor: ingestor,
		pingers:  pingers,
		logger:   logger,
	}
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req request.ExtractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sourceURL := strings.TrimSpace(req.URL)
	if sourceURL == "" {
		h.writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}
	if !utils.IsHTTPURL(sourceURL) {
		h.writeJSONError(w, "url must be an absolute http or https URL", http.StatusBadRequest)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), entity.ExtractionRequest{
		SourceURL: sourceURL,
		Force:     req.Force,
		RequestID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		h.writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleIngestions(w http.ResponseWriter, r *http.Request) {
	sourceURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if sourceURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	limit := defaultHistorySize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistorySize)
	}

	records, err := h.ingestor.History(r.Context(), sourceURL, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotConfigured) {
			h.writeJSONError(w, "Ingestion log is not configured", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load ingestion history", zap.String("url", sourceURL), zap.Error(err))
		h.writeJSONError(w, "Could not retrieve ingestion history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*entity.IngestionRecord{}
	}

	h.writeJSON(w, http.StatusOK, response.IngestionsResponse{URL: sourceURL, Ingestions: records})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := response.HealthResponse{}
	healthy := true
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			status[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		status[name] = "healthy"
	}

	if !healthy {
		h.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
