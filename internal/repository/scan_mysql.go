package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/pkg/uid"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLScanRepository implements ScanRepository using MySQL.
type MySQLScanRepository struct {
	db *sql.DB
}

// NewMySQLScanRepository opens a MySQL connection pool and ensures the scans table exists.
// The DSN must set parseTime=true.
func NewMySQLScanRepository(dsn string) (*MySQLScanRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// One statement per Exec: the driver rejects multi-statements by default.
	_, err = db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS scans (
		seq BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(36) NOT NULL UNIQUE,
		barcode TEXT NOT NULL,
		level VARCHAR(255) NOT NULL,
		scanned_at DATETIME(6) NOT NULL,
		INDEX idx_scans_scanned_at (scanned_at, seq)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[MySQLScanRepository] Initialized")
	return &MySQLScanRepository{db: db}, nil
}

// Insert stores a scan. DATETIME(6) keeps microseconds.
func (r *MySQLScanRepository) Insert(ctx context.Context, scan *model.Scan) error {
	stampScannedAt(scan, time.Microsecond)
	id := uid.NewOrdered()

	query := `INSERT INTO scans (id, barcode, level, scanned_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, scan.Barcode, scan.Level, scan.ScannedAt); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	scan.ID = id
	return nil
}

// ListByScannedAtDesc returns all scans, newest first.
func (r *MySQLScanRepository) ListByScannedAtDesc(ctx context.Context) ([]model.Scan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, barcode, level, scanned_at FROM scans ORDER BY scanned_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []model.Scan{}
	for rows.Next() {
		var s model.Scan
		if err := rows.Scan(&s.ID, &s.Barcode, &s.Level, &s.ScannedAt); err != nil {
			return nil, fmt.Errorf("failed to read scan row: %w", err)
		}
		s.ScannedAt = s.ScannedAt.UTC()
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// Stats returns statistics about the scans table.
func (r *MySQLScanRepository) Stats(ctx context.Context) (*model.ScanStats, error) {
	stats := &model.ScanStats{Backend: "mysql"}

	var lastScan sql.NullTime
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(scanned_at) FROM scans").Scan(&stats.TotalScans, &lastScan)
	if err != nil {
		return nil, err
	}
	if lastScan.Valid {
		at := lastScan.Time.UTC()
		stats.LastScanAt = &at
	}

	var size sql.NullInt64
	sizeQuery := `SELECT data_length + index_length FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = 'scans'`
	if err := r.db.QueryRowContext(ctx, sizeQuery).Scan(&size); err == nil && size.Valid {
		stats.SizeBytes = size.Int64
	}

	return stats, nil
}

// Ping checks the database connection.
func (r *MySQLScanRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (r *MySQLScanRepository) Close() error {
	return r.db.Close()
}

var _ ScanRepository = (*MySQLScanRepository)(nil)
