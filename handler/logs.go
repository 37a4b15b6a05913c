package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/tokengate/infra/opensearch"
	"github.com/mstgnz/tokengate/infra/response"
	"github.com/mstgnz/tokengate/infra/store"
)

// LoggerInterface defines the interface for log query operations
type LoggerInterface interface {
	SearchLogs(ctx context.Context, variant string, query map[string]any) ([]opensearch.TokenLog, error)
	GetRequestLogs(ctx context.Context, variant, requestID string) ([]opensearch.TokenLog, error)
	GetRecentErrorLogs(ctx context.Context, variant string, hours int) ([]opensearch.TokenLog, error)
	GetVariantStats(ctx context.Context, variant string, hours int) (map[string]any, error)
}

// AttemptReader reads persisted token attempts
type AttemptReader interface {
	ListRecentAttempts(variant string, limit int) ([]store.TokenAttempt, error)
}

// LogsHandler handles log related HTTP requests
type LogsHandler struct {
	logger   LoggerInterface
	attempts AttemptReader
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logger LoggerInterface, attempts AttemptReader) *LogsHandler {
	return &LogsHandler{
		logger:   logger,
		attempts: attempts,
	}
}

// ListLogs lists token attempt logs for a variant with filtering
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	if h.logger == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get variant from URL path parameter (required)
	variant := chi.URLParam(r, "variant")
	if variant == "" {
		response.Error(w, http.StatusBadRequest, "Variant parameter is required", nil)
		return
	}

	// Parse query parameters
	var query map[string]any = make(map[string]any)

	// Request ID filter
	if requestID := r.URL.Query().Get("requestId"); requestID != "" {
		query = map[string]any{
			"match": map[string]any{
				"request_id": requestID,
			},
		}
	}

	// Error filter (only errors)
	if errorsOnly := r.URL.Query().Get("errorsOnly"); errorsOnly == "true" {
		errorFilter := map[string]any{
			"exists": map[string]any{
				"field": "error.code",
			},
		}

		if len(query) == 0 {
			query = errorFilter
		} else {
			// Combine with existing query
			existing := query
			query = map[string]any{
				"bool": map[string]any{
					"must": []map[string]any{
						existing,
						errorFilter,
					},
				},
			}
		}
	}

	// Time range filter
	hoursStr := r.URL.Query().Get("hours")
	hours := 24 // Default to 24 hours
	if hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 && h <= 168 { // Max 7 days
			hours = h
		}
	}

	timeFilter := map[string]any{
		"range": map[string]any{
			"timestamp": map[string]any{
				"gte": fmt.Sprintf("now-%dh", hours),
			},
		},
	}

	if len(query) == 0 {
		query = timeFilter
	} else {
		// Combine with existing query
		existing := query
		query = map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					existing,
					timeFilter,
				},
			},
		}
	}

	// Search logs
	logs, err := h.logger.SearchLogs(ctx, variant, query)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to search logs", err)
		return
	}

	// Prepare response data
	responseData := map[string]any{
		"variant": variant,
		"filters": map[string]any{
			"hours":      hours,
			"requestId":  r.URL.Query().Get("requestId"),
			"errorsOnly": r.URL.Query().Get("errorsOnly") == "true",
		},
		"count": len(logs),
		"logs":  logs,
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", responseData)
}

// GetRequestLogs retrieves logs for a specific request ID
func (h *LogsHandler) GetRequestLogs(w http.ResponseWriter, r *http.Request) {
	if h.logger == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	// Get parameters
	variant := chi.URLParam(r, "variant")
	requestID := chi.URLParam(r, "requestID")

	if variant == "" {
		response.Error(w, http.StatusBadRequest, "variant parameter is required", nil)
		return
	}

	if requestID == "" {
		response.Error(w, http.StatusBadRequest, "requestID parameter is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get logs for specific request
	logs, err := h.logger.GetRequestLogs(ctx, variant, requestID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve logs", err)
		return
	}

	responseData := map[string]any{
		"logs":       logs,
		"count":      len(logs),
		"variant":    variant,
		"request_id": requestID,
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", responseData)
}

// GetErrorLogs retrieves recent error logs for a variant
func (h *LogsHandler) GetErrorLogs(w http.ResponseWriter, r *http.Request) {
	if h.logger == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get variant from URL path parameter
	variant := chi.URLParam(r, "variant")
	if variant == "" {
		response.Error(w, http.StatusBadRequest, "Variant parameter is required", nil)
		return
	}

	// Parse hours parameter
	hoursStr := r.URL.Query().Get("hours")
	hours := 24 // Default to 24 hours
	if hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 && h <= 168 { // Max 7 days
			hours = h
		}
	}

	// Get error logs
	logs, err := h.logger.GetRecentErrorLogs(ctx, variant, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get error logs", err)
		return
	}

	// Prepare response data
	responseData := map[string]any{
		"variant": variant,
		"hours":   hours,
		"count":   len(logs),
		"logs":    logs,
	}

	response.Success(w, http.StatusOK, "Error logs retrieved successfully", responseData)
}

// GetLogStats retrieves log statistics for a variant
func (h *LogsHandler) GetLogStats(w http.ResponseWriter, r *http.Request) {
	if h.logger == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	// Get parameters
	variant := chi.URLParam(r, "variant")
	hours := r.URL.Query().Get("hours")

	if variant == "" {
		response.Error(w, http.StatusBadRequest, "variant parameter is required", nil)
		return
	}

	hoursInt := 24 // Default to 24 hours
	if hours != "" {
		if h, err := strconv.Atoi(hours); err == nil && h > 0 {
			hoursInt = h
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	// Get stats from variant-specific index
	stats, err := h.logger.GetVariantStats(ctx, variant, hoursInt)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve log statistics", err)
		return
	}

	responseData := map[string]any{
		"stats":   stats,
		"variant": variant,
		"hours":   hoursInt,
	}

	response.Success(w, http.StatusOK, "Log statistics retrieved successfully", responseData)
}

// ListAttempts lists recently persisted token attempts for a variant
func (h *LogsHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if h.attempts == nil {
		response.Error(w, http.StatusServiceUnavailable, "Attempt store not available", nil)
		return
	}

	variant := chi.URLParam(r, "variant")
	if variant == "" {
		response.Error(w, http.StatusBadRequest, "Variant parameter is required", nil)
		return
	}

	limit := 50 // Default limit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	attempts, err := h.attempts.ListRecentAttempts(variant, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to list attempts", err)
		return
	}

	responseData := map[string]any{
		"variant":  variant,
		"limit":    limit,
		"count":    len(attempts),
		"attempts": attempts,
	}

	response.Success(w, http.StatusOK, "Attempts retrieved successfully", responseData)
}
