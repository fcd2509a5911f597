package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanbatch-rest-api/internal/model"
)

type createCall struct {
	barcode string
	level   string
}

// stubCreator records calls and fails the call numbered failOn (1-based) when set.
type stubCreator struct {
	calls  []createCall
	failOn int
	err    error
}

func (s *stubCreator) Create(ctx context.Context, barcode, level string) (*model.Scan, error) {
	s.calls = append(s.calls, createCall{barcode, level})
	if s.failOn > 0 && len(s.calls) == s.failOn {
		return nil, s.err
	}
	return &model.Scan{ID: barcode, Barcode: barcode, Level: level}, nil
}

func newBatch(t *testing.T, entries ...Entry) *Accumulator {
	t.Helper()
	a := New()
	for _, e := range entries {
		require.NoError(t, a.Add(e.Barcode, e.Level))
	}
	return a
}

func TestAccumulator_Add(t *testing.T) {
	t.Parallel()

	a := New()
	require.NoError(t, a.Add("X", LevelFirst))
	require.NoError(t, a.Add("X", LevelFirst))

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []Entry{{"X", LevelFirst}, {"X", LevelFirst}}, a.Entries())
}

func TestAccumulator_AddRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		barcode string
		level   Level
		want    error
	}{
		{"empty barcode", "", LevelFirst, ErrBarcodeRequired},
		{"unselected level", "X", LevelUnselected, ErrLevelRequired},
		{"unknown level", "X", Level("Fourth"), ErrLevelRequired},
		{"both missing", "", LevelUnselected, ErrBarcodeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newBatch(t, Entry{"A", LevelSecond})
			a.SetBarcode(tt.barcode)
			a.SetLevel(tt.level)

			err := a.AddStaged()
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, a.Len())

			barcode, level := a.Staged()
			assert.Equal(t, tt.barcode, barcode)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestAccumulator_AddStagedResetsInput(t *testing.T) {
	t.Parallel()

	a := New()
	barcode, level := a.Staged()
	assert.Empty(t, barcode)
	assert.Equal(t, LevelUnselected, level)

	a.SetBarcode("4006381333931")
	a.SetLevel(LevelThird)
	require.NoError(t, a.AddStaged())

	barcode, level = a.Staged()
	assert.Empty(t, barcode)
	assert.Equal(t, LevelUnselected, level)
	assert.Equal(t, []Entry{{"4006381333931", LevelThird}}, a.Entries())
}

func TestAccumulator_Delete(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"X", LevelFirst}, Entry{"Y", LevelSecond})
	require.NoError(t, a.Delete(0))
	assert.Equal(t, []Entry{{"Y", LevelSecond}}, a.Entries())

	a = newBatch(t, Entry{"A", LevelFirst}, Entry{"B", LevelSecond}, Entry{"C", LevelThird})
	require.NoError(t, a.Delete(1))
	assert.Equal(t, []Entry{{"A", LevelFirst}, {"C", LevelThird}}, a.Entries())
}

func TestAccumulator_DeleteOutOfRange(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"X", LevelFirst})
	for _, i := range []int{-1, 1, 5} {
		assert.ErrorIs(t, a.Delete(i), ErrPositionOutOfRange)
	}
	assert.Equal(t, []Entry{{"X", LevelFirst}}, a.Entries())

	assert.ErrorIs(t, New().Delete(0), ErrPositionOutOfRange)
}

func TestAccumulator_Clear(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"X", LevelFirst}, Entry{"Y", LevelSecond})
	a.Clear()
	assert.Zero(t, a.Len())

	a.Clear()
	assert.Zero(t, a.Len())
}

func TestAccumulator_Rows(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"X", LevelFirst}, Entry{"Y", LevelSecond})
	assert.Equal(t, []Row{
		{Position: 1, Barcode: "X", Level: LevelFirst},
		{Position: 2, Barcode: "Y", Level: LevelSecond},
	}, a.Rows())
	assert.Empty(t, New().Rows())
}

func TestAccumulator_EntriesIsACopy(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"X", LevelFirst})
	entries := a.Entries()
	entries[0].Barcode = "changed"
	assert.Equal(t, "X", a.Entries()[0].Barcode)
}

func TestAccumulator_SubmitEmpty(t *testing.T) {
	t.Parallel()

	creator := &stubCreator{}
	res, err := New().Submit(context.Background(), creator)

	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Nil(t, res)
	assert.Empty(t, creator.calls)
}

func TestAccumulator_SubmitAll(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"A", LevelFirst}, Entry{"B", LevelSecond}, Entry{"A", LevelFirst})
	creator := &stubCreator{}

	res, err := a.Submit(context.Background(), creator)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Submitted)
	assert.Equal(t, []createCall{{"A", "First"}, {"B", "Second"}, {"A", "First"}}, creator.calls)
	assert.Zero(t, a.Len())
}

func TestAccumulator_SubmitPartialFailure(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"A", LevelFirst}, Entry{"B", LevelSecond}, Entry{"C", LevelThird})
	cause := errors.New("Failed to save scan data")
	creator := &stubCreator{failOn: 2, err: cause}

	res, err := a.Submit(context.Background(), creator)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, 1, submitErr.Sent)
	assert.Equal(t, 2, submitErr.Pending)

	// Nothing after the failure was attempted.
	assert.Equal(t, []createCall{{"A", "First"}, {"B", "Second"}}, creator.calls)
	assert.Equal(t, []Entry{{"B", LevelSecond}, {"C", LevelThird}}, a.Entries())
}

func TestAccumulator_SubmitRetryAfterFailure(t *testing.T) {
	t.Parallel()

	a := newBatch(t, Entry{"A", LevelFirst}, Entry{"B", LevelSecond})
	_, err := a.Submit(context.Background(), &stubCreator{failOn: 1, err: errors.New("network down")})
	require.Error(t, err)
	assert.Equal(t, 2, a.Len())

	creator := &stubCreator{}
	res, err := a.Submit(context.Background(), creator)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Submitted)
	assert.Len(t, creator.calls, 2)
	assert.Zero(t, a.Len())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"First", LevelFirst, false},
		{"second", LevelSecond, false},
		{" THIRD ", LevelThird, false},
		{"Select Level", LevelUnselected, true},
		{"", LevelUnselected, true},
		{"4", LevelUnselected, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Level{LevelFirst, LevelSecond, LevelThird}, Levels())
	assert.False(t, LevelUnselected.Valid())
}
