package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"syscall"
	"time"

	"github.com/mstgnz/tokengate/infra/config"
	"github.com/mstgnz/tokengate/infra/opensearch"
	"github.com/mstgnz/tokengate/infra/response"
	"github.com/mstgnz/tokengate/infra/store"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	attemptStore *store.SQLiteStore
	osClient     *opensearch.Client
	tokenService TokenServiceInterface
	startTime    time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Store       *StoreHealth              `json:"store"`
	System      *SystemHealth             `json:"system"`
	Services    map[string]*ServiceHealth `json:"services"`
}

// StoreHealth represents attempt store health status
type StoreHealth struct {
	Status       string        `json:"status"`
	Connected    bool          `json:"connected"`
	ResponseTime time.Duration `json:"response_time_ms"`
	TotalRecords int           `json:"total_records"`
	SizeBytes    int64         `json:"size_bytes"`
	Error        string        `json:"error,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	Disk       *DiskHealth   `json:"disk"`
	GoRoutines int           `json:"goroutines"`
	CGoCalls   int64         `json:"cgo_calls"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc        string  `json:"alloc"`
	TotalAlloc   string  `json:"total_alloc"`
	Sys          string  `json:"sys"`
	GCRuns       uint32  `json:"gc_runs"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskHealth represents disk usage
type DiskHealth struct {
	Available    string  `json:"available"`
	Used         string  `json:"used"`
	Total        string  `json:"total"`
	UsagePercent float64 `json:"usage_percent"`
	Status       string  `json:"status"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string `json:"status"`
	Healthy     bool   `json:"healthy"`
	LastCheck   string `json:"last_check"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(attemptStore *store.SQLiteStore, osClient *opensearch.Client, tokenService TokenServiceInterface) *HealthHandler {
	return &HealthHandler{
		attemptStore: attemptStore,
		osClient:     osClient,
		tokenService: tokenService,
		startTime:    time.Now(),
	}
}

// CheckHealth performs comprehensive health checks
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).String(),
		Environment: getEnvironment(),
		Store:       h.checkStoreHealth(),
		System:      h.checkSystemHealth(),
		Services:    h.checkServicesHealth(),
	}

	// Determine overall status
	health.Status = h.determineOverallStatus(health)

	// Set appropriate HTTP status code
	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

// checkStoreHealth checks the SQLite attempt store
func (h *HealthHandler) checkStoreHealth() *StoreHealth {
	storeHealth := &StoreHealth{
		Status:    "unknown",
		Connected: false,
	}

	if h.attemptStore == nil {
		storeHealth.Status = "not_configured"
		storeHealth.Error = "Attempt store not configured"
		return storeHealth
	}

	start := time.Now()

	stats, err := h.attemptStore.GetStats()
	if err != nil {
		storeHealth.Status = "unhealthy"
		storeHealth.Error = err.Error()
		storeHealth.ResponseTime = time.Since(start)
		return storeHealth
	}

	storeHealth.Connected = true
	storeHealth.ResponseTime = time.Since(start)

	if total, ok := stats["total_attempts"].(int); ok {
		storeHealth.TotalRecords = total
	}
	if size, ok := stats["db_size_bytes"].(int64); ok {
		storeHealth.SizeBytes = size
	}

	if storeHealth.ResponseTime > time.Second {
		storeHealth.Status = "degraded"
	} else {
		storeHealth.Status = "healthy"
	}

	return storeHealth
}

// checkSystemHealth checks system resource health
func (h *HealthHandler) checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Get disk usage
	diskHealth := h.getDiskUsage()

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:        formatBytes(memStats.Alloc),
			TotalAlloc:   formatBytes(memStats.TotalAlloc),
			Sys:          formatBytes(memStats.Sys),
			GCRuns:       memStats.NumGC,
			UsagePercent: calculateMemoryUsagePercent(memStats),
		},
		Disk:       diskHealth,
		GoRoutines: runtime.NumGoroutine(),
		CGoCalls:   runtime.NumCgoCall(),
	}
}

// checkServicesHealth checks individual service health
func (h *HealthHandler) checkServicesHealth() map[string]*ServiceHealth {
	services := make(map[string]*ServiceHealth)
	now := time.Now().UTC().Format(time.RFC3339)

	// Check OpenSearch logging
	services["opensearch_logger"] = &ServiceHealth{
		LastCheck: now,
	}

	if h.osClient != nil && h.osClient.IsEnabled() {
		services["opensearch_logger"].Status = "healthy"
		services["opensearch_logger"].Healthy = true
		services["opensearch_logger"].Description = "Token attempt logging to OpenSearch"
	} else {
		services["opensearch_logger"].Status = "not_configured"
		services["opensearch_logger"].Healthy = false
		services["opensearch_logger"].Description = "OpenSearch logging not configured"
	}

	// Check token service
	services["token_service"] = &ServiceHealth{
		LastCheck: now,
	}

	if h.tokenService != nil {
		services["token_service"].Status = "healthy"
		services["token_service"].Healthy = true
		services["token_service"].Description = "Tokenization gateway client"
	} else {
		services["token_service"].Status = "unhealthy"
		services["token_service"].Healthy = false
		services["token_service"].Error = "Token service not initialized"
	}

	return services
}

// determineOverallStatus determines overall system status
func (h *HealthHandler) determineOverallStatus(health *HealthStatus) string {
	// Check attempt store
	if health.Store != nil && health.Store.Status == "unhealthy" {
		return "unhealthy"
	}

	// The token service is the only critical dependency
	if service, exists := health.Services["token_service"]; exists && !service.Healthy {
		return "unhealthy"
	}

	// Check system resources
	if health.System != nil {
		if health.System.Memory.UsagePercent > 90 {
			return "degraded"
		}
		if health.System.Disk != nil && health.System.Disk.UsagePercent > 90 {
			return "degraded"
		}
	}

	// Check store performance
	if health.Store != nil && health.Store.Status == "degraded" {
		return "degraded"
	}

	return "healthy"
}

// Helper functions

func getEnvironment() string {
	if env := config.GetEnv("ENVIRONMENT", ""); env != "" {
		return env
	}
	if env := config.GetEnv("ENV", ""); env != "" {
		return env
	}
	return "development"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func calculateMemoryUsagePercent(memStats runtime.MemStats) float64 {
	// This is a simplified calculation
	// In production, you might want to get actual system memory limits
	return (float64(memStats.Alloc) / float64(memStats.Sys)) * 100
}

func (h *HealthHandler) getDiskUsage() *DiskHealth {
	var stat syscall.Statfs_t
	wd := "/"

	disk := &DiskHealth{
		Status: "unknown",
	}

	if err := syscall.Statfs(wd, &stat); err != nil {
		disk.Status = "error"
		return disk
	}

	// Available space
	available := stat.Bavail * uint64(stat.Bsize)
	// Total space
	total := stat.Blocks * uint64(stat.Bsize)
	// Used space
	used := total - (stat.Bfree * uint64(stat.Bsize))

	disk.Available = formatBytes(available)
	disk.Total = formatBytes(total)
	disk.Used = formatBytes(used)
	disk.UsagePercent = (float64(used) / float64(total)) * 100

	if disk.UsagePercent > 90 {
		disk.Status = "critical"
	} else if disk.UsagePercent > 80 {
		disk.Status = "warning"
	} else {
		disk.Status = "healthy"
	}

	return disk
}
