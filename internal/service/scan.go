package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"scanbatch-rest-api/internal/cache"
	"scanbatch-rest-api/internal/model"
	"scanbatch-rest-api/internal/repository"
)

// Validation errors returned by Create.
var (
	ErrBarcodeRequired = errors.New("barcode is required")
	ErrLevelRequired   = errors.New("level is required")
	ErrScannedAtRange  = errors.New("scannedAt must fall within years 1 to 9999")
)

// The cached history lives under historyCacheKey:<generation>. Every insert
// bumps the generation, so a list that read the store before the insert can
// only fill a key no reader will ask for again.
const (
	historyCacheKey      = "scans:history"
	historyGenerationKey = "scans:history:gen"
)

// ScanService handles scan ingestion business logic.
type ScanService struct {
	repo     repository.ScanRepository
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewScanService creates a new scan service.
// Returns nil if repo is nil (required dependency).
func NewScanService(repo repository.ScanRepository) *ScanService {
	if repo == nil {
		return nil
	}
	return &ScanService{
		repo: repo,
		now:  time.Now,
	}
}

// NewScanServiceWithCache creates a scan service that keeps the history listing in c.
// A nil cache or non-positive TTL disables caching.
func NewScanServiceWithCache(repo repository.ScanRepository, c cache.Cache, ttl time.Duration) *ScanService {
	s := NewScanService(repo)
	if s == nil || c == nil || ttl <= 0 {
		return s
	}
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// Create validates and stores one scan. Level is free text here; the
// enumerated set is enforced by clients.
func (s *ScanService) Create(ctx context.Context, in model.CreateScanInput) (*model.Scan, error) {
	if in.Barcode == "" {
		return nil, ErrBarcodeRequired
	}
	if in.Level == "" {
		return nil, ErrLevelRequired
	}

	scan := &model.Scan{
		Barcode:   in.Barcode,
		Level:     in.Level,
		ScannedAt: s.now(),
	}
	if in.ScannedAt != nil && !in.ScannedAt.IsZero() {
		// Outside this range the timestamp cannot be written back as JSON.
		if y := in.ScannedAt.UTC().Year(); y < 1 || y > 9999 {
			return nil, ErrScannedAtRange
		}
		scan.ScannedAt = *in.ScannedAt
	}

	if err := s.repo.Insert(ctx, scan); err != nil {
		return nil, fmt.Errorf("save scan: %w", err)
	}

	s.invalidateHistory(ctx)
	return scan, nil
}

// List returns every stored scan, newest first.
func (s *ScanService) List(ctx context.Context) ([]model.Scan, error) {
	key, cacheable := s.historyKey(ctx)
	if cacheable {
		if scans, ok := s.cachedHistory(ctx, key); ok {
			return scans, nil
		}
	}

	scans, err := s.repo.ListByScannedAtDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}

	if cacheable {
		s.storeHistory(ctx, key, scans)
	}
	return scans, nil
}

// Stats returns store statistics.
func (s *ScanService) Stats(ctx context.Context) (*model.ScanStats, error) {
	return s.repo.Stats(ctx)
}

// Ping checks the scan store is reachable.
func (s *ScanService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// historyKey returns the cache key for the current history generation.
// It must be read before the store so a concurrent insert moves readers to a new key.
func (s *ScanService) historyKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	gen := []byte("0")
	data, err := s.cache.Get(ctx, historyGenerationKey)
	switch {
	case err == nil:
		gen = data
	case !errors.Is(err, cache.ErrCacheMiss):
		log.Printf("[ScanService] Cache read failed, using store: %v", err)
		return "", false
	}
	return historyCacheKey + ":" + string(gen), true
}

func (s *ScanService) cachedHistory(ctx context.Context, key string) ([]model.Scan, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[ScanService] Cache read failed, using store: %v", err)
		}
		return nil, false
	}

	var scans []model.Scan
	if err := json.Unmarshal(data, &scans); err != nil {
		log.Printf("[ScanService] Discarding corrupt cached history: %v", err)
		return nil, false
	}
	return scans, true
}

func (s *ScanService) storeHistory(ctx context.Context, key string, scans []model.Scan) {
	data, err := json.Marshal(scans)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Printf("[ScanService] Cache write failed: %v", err)
	}
}

// invalidateHistory moves readers to a fresh generation. It runs after the insert.
func (s *ScanService) invalidateHistory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, historyGenerationKey); err != nil {
		log.Printf("[ScanService] Cache invalidation failed: %v", err)
	}
}
