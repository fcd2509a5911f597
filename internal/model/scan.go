package model

import "time"

// Scan is a persisted scan record. Records are immutable once stored.
type Scan struct {
	ID        string    `json:"id"`
	Barcode   string    `json:"barcode"`
	Level     string    `json:"level"`
	ScannedAt time.Time `json:"scannedAt"`
}

// CreateScanInput is the payload accepted by POST /scan.
// ScannedAt is optional; the write time is used when it is absent.
type CreateScanInput struct {
	Barcode   string     `json:"barcode"`
	Level     string     `json:"level"`
	ScannedAt *time.Time `json:"scannedAt,omitempty"`
}

// CreateScanResponse is the body returned after a successful save.
type CreateScanResponse struct {
	Message string `json:"message"`
	Scan    Scan   `json:"scan"`
}

// ScanStats summarises the scan store for the admin surface.
type ScanStats struct {
	Backend    string     `json:"backend"`
	TotalScans int64      `json:"total_scans"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
	SizeBytes  int64      `json:"size_bytes,omitempty"`
}
