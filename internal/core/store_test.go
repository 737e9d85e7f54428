package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, category string, qty int, price float64) Record {
	return Record{Name: name, Quantity: qty, UnitPrice: price, Category: category}
}

func loadedStore(t *testing.T, records ...Record) *Store {
	t.Helper()
	s := NewStore(discardLogger())
	require.NoError(t, s.Load(&Dataset{Records: records}))
	return s
}

func TestStore_LoadDeduplicatesLastWins(t *testing.T) {
	s := loadedStore(t, rec("X", "A", 1, 1), rec("X", "A", 5, 1))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, 5, snap.At(0).Quantity)
}

func TestStore_LoadKeepsPositionOfLastOccurrence(t *testing.T) {
	s := loadedStore(t,
		rec("X", "A", 1, 1),
		rec("Y", "A", 2, 1),
		rec("X", "B", 3, 1), // different key
		rec("X", "A", 4, 1),
	)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []Record{rec("Y", "A", 2, 1), rec("X", "B", 3, 1), rec("X", "A", 4, 1)}, snap.Records())
}

func TestStore_LoadFailureKeepsPreviousState(t *testing.T) {
	s := loadedStore(t, rec("Keep", "A", 1, 1))

	assert.ErrorIs(t, s.Load(nil), ErrNoValidData)
	assert.ErrorIs(t, s.Load(&Dataset{}), ErrNoValidData)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "Keep", snap.At(0).Name)
}

func TestStore_ReadsBeforeLoad(t *testing.T) {
	s := NewStore(discardLogger())

	_, err := s.Search(Query{})
	assert.ErrorIs(t, err, ErrUninitialized)

	_, err = s.LowStock()
	assert.ErrorIs(t, err, ErrUninitialized)

	_, err = s.Report()
	assert.ErrorIs(t, err, ErrUninitialized)

	_, err = s.Alerts()
	assert.ErrorIs(t, err, ErrUninitialized)

	assert.ErrorIs(t, s.Load(nil), ErrNoValidData)
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestStore_SetThreshold(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "int", value: 15, want: 15},
		{name: "numeric string", value: "7", want: 7},
		{name: "integral float", value: 3.0, want: 3},
		{name: "zero", value: 0, want: 0},
		{name: "negative", value: -5, wantErr: true},
		{name: "text", value: "invalid", wantErr: true},
		{name: "fraction", value: 2.5, wantErr: true},
		{name: "nil", value: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(discardLogger())
			err := s.SetThreshold(tt.value)
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, DefaultThreshold, s.Threshold())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Threshold())
		})
	}
}

func TestStore_InvalidThresholdKeepsLowStockBehaviour(t *testing.T) {
	s := loadedStore(t, rec("A", "C", 5, 1), rec("B", "C", 15, 1), rec("D", "C", 3, 1))
	require.NoError(t, s.SetThreshold(4))

	require.Error(t, s.SetThreshold(-5))
	require.Error(t, s.SetThreshold("invalid"))

	low, err := s.LowStock()
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "D", low[0].Name)
}

func TestStore_SetThresholdWrapsConversionError(t *testing.T) {
	err := NewStore(discardLogger()).SetThreshold("many")

	var conv *TypeConversionError
	assert.True(t, errors.As(err, &conv))
	assert.Equal(t, "VAL003", MapError(err).Code)
}

func TestStore_LowStockInclusive(t *testing.T) {
	s := loadedStore(t, rec("A", "C", 10, 1), rec("B", "C", 11, 1), rec("D", "C", 0, 1))

	low, err := s.LowStock()
	require.NoError(t, err)
	assert.Len(t, low, 2)

	low, err = s.LowStockAt(0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "D", low[0].Name)
}

func TestSnapshot_IsDetachedFromCallers(t *testing.T) {
	src := []Record{rec("A", "C", 1, 1)}
	snap := NewSnapshot(src)
	src[0].Name = "changed"

	out := snap.Records()
	out[0].Quantity = 99

	assert.Equal(t, "A", snap.At(0).Name)
	assert.Equal(t, 1, snap.At(0).Quantity)
}

func TestStore_SearchReturnsCopy(t *testing.T) {
	s := loadedStore(t, rec("A", "C", 1, 1))

	out, err := s.Search(Query{})
	require.NoError(t, err)
	out[0].Name = "mutated"

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "A", snap.At(0).Name)
}
