package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/tokengate/infra/opensearch"
)

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// TokenLoggingMiddleware creates a middleware for logging token requests/responses
func TokenLoggingMiddleware(logger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip logging for non-token endpoints
			if !isTokenEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Generate request ID
			requestID := uuid.New().String()
			r.Header.Set("X-Request-ID", requestID)

			// Extract variant from URL
			variant := extractVariantFromURL(r.URL.Path)

			// Capture request body
			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			// Create response writer wrapper
			rw := newResponseWriter(w)

			// Process request
			next.ServeHTTP(rw, r)

			tokenLog := opensearch.TokenLog{
				Timestamp: rw.startTime,
				Variant:   variant,
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				RequestID: requestID,
				UserAgent: r.UserAgent(),
				ClientIP:  GetClientIP(r),
				Request: opensearch.RequestLog{
					Body: opensearch.SanitizeForLog(string(requestBody)),
				},
				Response: opensearch.ResponseLog{
					StatusCode:       rw.statusCode,
					Body:             opensearch.SanitizeForLog(rw.body.String()),
					ProcessingTimeMs: time.Since(rw.startTime).Milliseconds(),
				},
			}

			// Extract token attempt information from request/response
			if tokenInfo := extractTokenInfo(string(requestBody), rw.body.String()); tokenInfo != nil {
				tokenLog.TokenInfo = *tokenInfo
			}

			// Extract error information if response indicates error
			if errorInfo := extractErrorInfo(rw.body.String()); errorInfo != nil {
				tokenLog.Error = *errorInfo
			}

			// Log to OpenSearch asynchronously to avoid blocking the response
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Failures here never fail the request
				_ = logger.LogTokenAttempt(ctx, tokenLog)
			}()
		})
	}
}

// isTokenEndpoint checks if the URL path is a token-related endpoint
func isTokenEndpoint(path string) bool {
	tokenPaths := []string{
		"/v1/tokens",
		"/v1/secure-validation",
	}

	for _, tokenPath := range tokenPaths {
		if strings.HasPrefix(path, tokenPath) {
			return true
		}
	}

	return false
}

// extractVariantFromURL extracts the token variant from the URL path.
// Token routes follow /v1/tokens/{variant}.
func extractVariantFromURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	if len(segments) >= 3 && segments[0] == "v1" && segments[1] == "tokens" {
		return segments[2]
	}

	return ""
}

// extractTokenInfo extracts token attempt information from request/response bodies
func extractTokenInfo(requestBody, responseBody string) *opensearch.TokenInfo {
	tokenInfo := &opensearch.TokenInfo{}
	found := false

	// Try to extract from request body first
	if requestBody != "" {
		var requestData map[string]any
		if err := json.Unmarshal([]byte(requestBody), &requestData); err == nil {
			if amount, ok := requestData["totalAmount"].(float64); ok {
				tokenInfo.Amount = amount
				found = true
			}
			if currency, ok := requestData["currency"].(string); ok {
				tokenInfo.Currency = currency
				found = true
			}
		}
	}

	// Try to extract from response body
	if responseBody != "" {
		var responseData map[string]any
		if err := json.Unmarshal([]byte(responseBody), &responseData); err == nil {
			// Check for nested data structure
			if data, ok := responseData["data"].(map[string]any); ok {
				if token, ok := data["token"].(string); ok && token != "" {
					tokenInfo.Successful = true
					found = true
				}
				if secureService, ok := data["secureService"].(string); ok {
					tokenInfo.SecureService = secureService
					found = true
				}
			}
		}
	}

	if !found {
		return nil
	}

	return tokenInfo
}

// extractErrorInfo extracts error information from response body
func extractErrorInfo(responseBody string) *opensearch.ErrorInfo {
	if responseBody == "" {
		return nil
	}

	var responseData map[string]any
	if err := json.Unmarshal([]byte(responseBody), &responseData); err != nil {
		return nil
	}

	errorInfo := &opensearch.ErrorInfo{}

	// The failure code and message live in the nested transaction data
	if data, ok := responseData["data"].(map[string]any); ok {
		if code, ok := data["code"].(string); ok {
			errorInfo.Code = code
		}
		if message, ok := data["message"].(string); ok {
			errorInfo.Message = message
		}
	}

	if errorInfo.Code == "" {
		if errorMsg, ok := responseData["error"].(string); ok {
			errorInfo.Message = errorMsg
		}
	}

	// Return nil if no error information found
	if errorInfo.Code == "" && errorInfo.Message == "" {
		return nil
	}

	return errorInfo
}

// LoggingStatsMiddleware creates middleware for serving logging statistics
func LoggingStatsMiddleware(logger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if this is a stats request
			if r.URL.Path == "/v1/stats" && r.Method == "GET" {
				handleStatsRequest(w, r, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// handleStatsRequest handles requests for logging statistics
func handleStatsRequest(w http.ResponseWriter, r *http.Request, logger *opensearch.Logger) {
	variant := r.URL.Query().Get("variant")
	hoursStr := r.URL.Query().Get("hours")

	hours := 24 // Default to 24 hours
	if hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 {
			hours = h
		}
	}

	if variant == "" {
		http.Error(w, "variant parameter is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stats, err := logger.GetVariantStats(ctx, variant, hours)
	if err != nil {
		http.Error(w, "Failed to get stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "Failed to encode stats", http.StatusInternalServerError)
		return
	}
}
