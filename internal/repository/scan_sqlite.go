package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/pkg/uid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteScanRepository implements ScanRepository using SQLite.
// Thread-safe with WAL mode for concurrent reads.
type SQLiteScanRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteScanRepository creates a new SQLite scan repository.
// dbPath is the path to the SQLite database file (e.g., "./data/scans.db")
func NewSQLiteScanRepository(dbPath string) (*SQLiteScanRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteScanRepository] Initialized with database: %s", dbPath)
	return &SQLiteScanRepository{db: db}, nil
}

// createSQLiteTables creates the scans table.
// scanned_at holds UTC unix microseconds, which covers every representable year; seq breaks ties in insertion order.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS scans (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		barcode TEXT NOT NULL CHECK (barcode <> ''),
		level TEXT NOT NULL CHECK (level <> ''),
		scanned_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at DESC, seq DESC);
	`
	_, err := db.Exec(query)
	return err
}

// Insert stores a scan.
func (r *SQLiteScanRepository) Insert(ctx context.Context, scan *model.Scan) error {
	stampScannedAt(scan, time.Microsecond)
	id := uid.NewOrdered()

	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO scans (id, barcode, level, scanned_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, scan.Barcode, scan.Level, scan.ScannedAt.UnixMicro()); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	scan.ID = id
	return nil
}

// ListByScannedAtDesc returns all scans, newest first.
func (r *SQLiteScanRepository) ListByScannedAtDesc(ctx context.Context) ([]model.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, barcode, level, scanned_at FROM scans ORDER BY scanned_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []model.Scan{}
	for rows.Next() {
		var s model.Scan
		var scannedAt int64
		if err := rows.Scan(&s.ID, &s.Barcode, &s.Level, &scannedAt); err != nil {
			return nil, fmt.Errorf("failed to read scan row: %w", err)
		}
		s.ScannedAt = time.UnixMicro(scannedAt).UTC()
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// Stats returns statistics about the scan database.
func (r *SQLiteScanRepository) Stats(ctx context.Context) (*model.ScanStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &model.ScanStats{Backend: "sqlite"}

	var lastScan sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(scanned_at) FROM scans").Scan(&stats.TotalScans, &lastScan)
	if err != nil {
		return nil, err
	}
	if lastScan.Valid {
		at := time.UnixMicro(lastScan.Int64).UTC()
		stats.LastScanAt = &at
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats.SizeBytes = pageCount * pageSize

	return stats, nil
}

// Ping checks the database connection.
func (r *SQLiteScanRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLiteScanRepository) Close() error {
	return r.db.Close()
}

var _ ScanRepository = (*SQLiteScanRepository)(nil)
