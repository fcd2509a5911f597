package handler

import (
	"net/http"
	"runtime"
	"time"

	"scanbatch-rest-api/internal/service"
	"scanbatch-rest-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	scanService *service.ScanService
	cacheType   string // memory, redis, or none
	startTime   time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(scanService *service.ScanService, cacheType string) *AdminHandler {
	return &AdminHandler{
		scanService: scanService,
		cacheType:   cacheType,
		startTime:   time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["cache_type"] = h.cacheType

	storeStats, err := h.scanService.Stats(r.Context())
	if err == nil {
		stats["scan_store"] = storeStats
	} else {
		stats["scan_store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
