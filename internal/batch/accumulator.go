// Package batch holds scans locally until the user submits them as a unit.
package batch

import (
	"context"
	"errors"
	"fmt"

	"scanbatch-rest-api/internal/model"
)

// Validation errors. None of them mutate the batch.
var (
	ErrBarcodeRequired    = errors.New("please scan a barcode first")
	ErrLevelRequired      = errors.New("please select a level")
	ErrEmptyBatch         = errors.New("no batches to submit")
	ErrPositionOutOfRange = errors.New("batch position out of range")
)

// Creator persists a single scan. *client.Client satisfies it.
type Creator interface {
	Create(ctx context.Context, barcode, level string) (*model.Scan, error)
}

// Entry is one scan waiting to be submitted.
type Entry struct {
	Barcode string
	Level   Level
}

// Row is the display projection of an entry. Position is 1-based.
type Row struct {
	Position int
	Barcode  string
	Level    Level
}

// SubmitResult reports a fully successful submit.
type SubmitResult struct {
	Submitted int
}

// SubmitError reports a submit that stopped at the first failed create.
// Sent entries were removed from the batch; the failed one and everything after it remain.
type SubmitError struct {
	Sent    int
	Pending int
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit stopped after %d of %d: %v", e.Sent, e.Sent+e.Pending, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Accumulator is the ordered list of pending scans plus the staged input
// fields. It has a single owner and is not safe for concurrent use.
type Accumulator struct {
	entries []Entry

	stagedBarcode string
	stagedLevel   Level
}

// New returns an empty accumulator with nothing staged.
func New() *Accumulator {
	return &Accumulator{stagedLevel: LevelUnselected}
}

// SetBarcode stages a captured payload. The value is taken verbatim.
func (a *Accumulator) SetBarcode(barcode string) {
	a.stagedBarcode = barcode
}

// SetLevel stages the selected level.
func (a *Accumulator) SetLevel(level Level) {
	a.stagedLevel = level
}

// Staged returns the currently staged barcode and level.
func (a *Accumulator) Staged() (string, Level) {
	return a.stagedBarcode, a.stagedLevel
}

// Add appends a scan and resets the staged fields.
func (a *Accumulator) Add(barcode string, level Level) error {
	if barcode == "" {
		return ErrBarcodeRequired
	}
	if !level.Valid() {
		return ErrLevelRequired
	}

	a.entries = append(a.entries, Entry{Barcode: barcode, Level: level})
	a.resetStaged()
	return nil
}

// AddStaged adds the staged barcode and level.
func (a *Accumulator) AddStaged() error {
	return a.Add(a.stagedBarcode, a.stagedLevel)
}

// Delete removes the entry at zero-based index i; later entries shift down.
func (a *Accumulator) Delete(i int) error {
	if i < 0 || i >= len(a.entries) {
		return ErrPositionOutOfRange
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	return nil
}

// Clear drops every pending entry.
func (a *Accumulator) Clear() {
	a.entries = nil
}

// Len returns the number of pending entries.
func (a *Accumulator) Len() int {
	return len(a.entries)
}

// Entries returns a copy of the pending entries.
func (a *Accumulator) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Rows projects the batch for display. Row i deletes with Delete(i).
func (a *Accumulator) Rows() []Row {
	rows := make([]Row, len(a.entries))
	for i, e := range a.entries {
		rows[i] = Row{Position: i + 1, Barcode: e.Barcode, Level: e.Level}
	}
	return rows
}

// Submit sends every entry through c, one at a time and in order. On full
// success the batch is cleared. On the first failure it stops and returns a
// *SubmitError; confirmed entries are dropped and the rest stay pending.
func (a *Accumulator) Submit(ctx context.Context, c Creator) (*SubmitResult, error) {
	if len(a.entries) == 0 {
		return nil, ErrEmptyBatch
	}

	total := len(a.entries)
	for i, e := range a.entries {
		if _, err := c.Create(ctx, e.Barcode, string(e.Level)); err != nil {
			a.entries = append([]Entry(nil), a.entries[i:]...)
			return nil, &SubmitError{Sent: i, Pending: total - i, Err: err}
		}
	}

	a.entries = nil
	return &SubmitResult{Submitted: total}, nil
}

func (a *Accumulator) resetStaged() {
	a.stagedBarcode = ""
	a.stagedLevel = LevelUnselected
}
