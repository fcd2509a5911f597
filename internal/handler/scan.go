package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"scanbatch-rest-api/internal/middleware"
	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/internal/service"
	"scanbatch-rest-api/pkg/apierror"
	"scanbatch-rest-api/pkg/response"
)

// Client-facing failure messages. Causes are logged, never returned.
const (
	msgSaveFailed  = "Failed to save scan data"
	msgFetchFailed = "Failed to fetch scans"
)

// maxScanBodyBytes caps a POST /scan body; one scan is a few hundred bytes.
const maxScanBodyBytes = 64 << 10

// ScanHandler handles scan ingestion HTTP requests.
type ScanHandler struct {
	scanService *service.ScanService
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
	}
}

// CreateScan handles POST /scan
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxScanBodyBytes)

	var in model.CreateScanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.fail(w, r, msgSaveFailed, err)
		return
	}

	scan, err := h.scanService.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, msgSaveFailed, err)
		return
	}

	response.Created(w, model.CreateScanResponse{
		Message: "Saved",
		Scan:    *scan,
	})
}

// ListScans handles GET /scans
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := h.scanService.List(r.Context())
	if err != nil {
		h.fail(w, r, msgFetchFailed, err)
		return
	}

	response.OK(w, scans)
}

// fail collapses every failure, validation included, into a generic 500.
func (h *ScanHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.Printf("[ScanHandler] %s %s request_id=%s: %v",
		r.Method, r.URL.Path, middleware.GetRequestID(r.Context()), err)
	response.Error(w, apierror.InternalError(msg).WithCause(err))
}
