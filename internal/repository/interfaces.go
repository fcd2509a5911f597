package repository

import (
	"context"
	"time"

	"scanbatch-rest-api/internal/model"
)

// ScanRepository defines scan record data access methods.
// The store is append-only: there is no update or delete.
type ScanRepository interface {
	// Insert stores a scan, assigning its ID. A zero ScannedAt is set to the write time.
	Insert(ctx context.Context, scan *model.Scan) error

	// ListByScannedAtDesc returns every scan, newest ScannedAt first.
	// Scans with equal timestamps are returned most recently inserted first.
	ListByScannedAtDesc(ctx context.Context) ([]model.Scan, error)

	// Stats returns statistics about the scan store.
	Stats(ctx context.Context) (*model.ScanStats, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}

// stampScannedAt defaults ScannedAt to now and normalises it to UTC at the
// store's timestamp precision, so the returned record matches what is read back.
func stampScannedAt(scan *model.Scan, precision time.Duration) {
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = time.Now()
	}
	scan.ScannedAt = scan.ScannedAt.UTC().Truncate(precision)
}
