// Package capture delivers decoded barcode payloads to the batch session.
//
// A capture is single-shot: Capture returns at most one payload, and a
// re-scan is a new call. Payloads are passed on verbatim.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	ErrCancelled         = errors.New("scanner closed")
	ErrPermissionDenied  = errors.New("no access to camera")
	ErrPermissionPending = errors.New("requesting permission")
)

// PermissionState is the scanner access state.
type PermissionState int

const (
	PermissionPending PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (p PermissionState) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "pending"
	}
}

// Message is the user-facing text shown instead of the scanner, empty when granted.
func (p PermissionState) Message() string {
	switch p {
	case PermissionGranted:
		return ""
	case PermissionDenied:
		return "No access to camera"
	default:
		return "Requesting permission..."
	}
}

// Source produces decoded payloads.
type Source interface {
	Permission(ctx context.Context) PermissionState
	// Next blocks until one payload is decoded, the user closes the
	// scanner (ErrCancelled) or ctx is done.
	Next(ctx context.Context) (string, error)
}

// Capture runs one scan session against src.
func Capture(ctx context.Context, src Source) (string, error) {
	switch src.Permission(ctx) {
	case PermissionDenied:
		return "", ErrPermissionDenied
	case PermissionPending:
		return "", ErrPermissionPending
	}
	return src.Next(ctx)
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
}

// ReaderSource reads payloads line by line from a terminal or a keyboard-wedge
// scanner. An empty line or "cancel" closes the scanner without a payload.
// The same line stream is available to callers through ReadLine.
type ReaderSource struct {
	r     io.Reader
	start sync.Once
	lines chan string
	err   error // set before lines is closed
}

// NewReaderSource creates a source reading from r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{
		r:     r,
		lines: make(chan string),
	}
}

// Permission always reports granted; reading a stream needs no consent.
func (s *ReaderSource) Permission(ctx context.Context) PermissionState {
	return PermissionGranted
}

// ReadLine returns the next raw line. It returns io.EOF once the reader is exhausted.
func (s *ReaderSource) ReadLine(ctx context.Context) (string, error) {
	s.start.Do(func() { go s.run() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			if s.err != nil {
				return "", s.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

// Next reads one payload.
func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	line, err := s.ReadLine(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", cancelled(ctx)
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("read scan: %w", err)
	}

	payload := strings.TrimRight(line, "\r")
	if strings.TrimSpace(payload) == "" || strings.EqualFold(strings.TrimSpace(payload), "cancel") {
		return "", ErrCancelled
	}
	return payload, nil
}

func (s *ReaderSource) run() {
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
	s.err = sc.Err()
	close(s.lines)
}

// ChanSource is fed payloads over a channel. Closing the channel closes the scanner.
type ChanSource struct {
	mu         sync.Mutex
	permission PermissionState
	payloads   <-chan string
}

// NewChanSource creates a channel-fed source with the given initial permission.
func NewChanSource(payloads <-chan string, permission PermissionState) *ChanSource {
	return &ChanSource{
		permission: permission,
		payloads:   payloads,
	}
}

// SetPermission records the outcome of a permission request.
func (s *ChanSource) SetPermission(p PermissionState) {
	s.mu.Lock()
	s.permission = p
	s.mu.Unlock()
}

// Permission returns the current permission state.
func (s *ChanSource) Permission(ctx context.Context) PermissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// Next waits for one payload.
func (s *ChanSource) Next(ctx context.Context) (string, error) {
	if s.Permission(ctx) == PermissionDenied {
		return "", ErrPermissionDenied
	}

	select {
	case <-ctx.Done():
		return "", cancelled(ctx)
	case payload, ok := <-s.payloads:
		if !ok {
			return "", ErrCancelled
		}
		return payload, nil
	}
}
