package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/pkg/uid"
)

// MemoryScanRepository keeps scans in process memory.
// Use this for development/testing; nothing survives a restart.
type MemoryScanRepository struct {
	mu    sync.RWMutex
	scans []model.Scan
}

// NewMemoryScanRepository creates an empty in-memory scan repository.
func NewMemoryScanRepository() *MemoryScanRepository {
	return &MemoryScanRepository{}
}

// Insert appends a scan.
func (r *MemoryScanRepository) Insert(ctx context.Context, scan *model.Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stampScannedAt(scan, time.Nanosecond)
	scan.ID = uid.NewOrdered()

	r.mu.Lock()
	r.scans = append(r.scans, *scan)
	r.mu.Unlock()
	return nil
}

// ListByScannedAtDesc returns a copy of all scans, newest first.
func (r *MemoryScanRepository) ListByScannedAtDesc(ctx context.Context) ([]model.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]model.Scan, len(r.scans))
	// Reverse insertion order first so the stable sort keeps later inserts ahead on ties.
	for i, s := range r.scans {
		out[len(r.scans)-1-i] = s
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})
	return out, nil
}

// Stats returns the scan count and latest timestamp.
func (r *MemoryScanRepository) Stats(ctx context.Context) (*model.ScanStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &model.ScanStats{
		Backend:    "memory",
		TotalScans: int64(len(r.scans)),
	}
	for i := range r.scans {
		at := r.scans[i].ScannedAt
		if stats.LastScanAt == nil || at.After(*stats.LastScanAt) {
			stats.LastScanAt = &at
		}
	}
	return stats, nil
}

// Ping always succeeds.
func (r *MemoryScanRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (r *MemoryScanRepository) Close() error {
	return nil
}

var _ ScanRepository = (*MemoryScanRepository)(nil)
