package core

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"
)

// Snapshot is a read-only view of consolidated records. It shares storage
// with the Store that produced it, which never mutates a published slice;
// Load swaps in a new one instead.
type Snapshot struct {
	records []Record
}

// NewSnapshot copies records into a standalone view.
func NewSnapshot(records []Record) Snapshot {
	return Snapshot{records: append([]Record(nil), records...)}
}

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.records) }

// At returns the i-th record.
func (s Snapshot) At(i int) Record { return s.records[i] }

// All iterates over the records in dataset order.
func (s Snapshot) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range s.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records returns a copy of the records.
func (s Snapshot) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Store owns the consolidated dataset and the low-stock threshold. It is safe
// for concurrent use, though a single caller is the expected case.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	loaded    bool
	threshold int
	logger    *slog.Logger
}

// NewStore creates an empty store with DefaultThreshold.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{threshold: DefaultThreshold, logger: logger}
}

// Load replaces the store's contents with ds deduplicated by (name, category):
// the last occurrence of each key wins and takes that occurrence's position.
// A nil or empty dataset is rejected and leaves the previous contents intact.
func (s *Store) Load(ds *Dataset) error {
	if ds == nil || len(ds.Records) == 0 {
		return fmt.Errorf("load: %w", ErrNoValidData)
	}

	deduped := Deduplicate(ds.Records)

	s.mu.Lock()
	s.snap = Snapshot{records: deduped}
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("inventory loaded",
		"run_id", ds.RunID,
		"rows", len(ds.Records),
		"products", len(deduped),
		"duplicates", len(ds.Records)-len(deduped),
	)
	return nil
}

// Deduplicate keeps the last record for each (name, category) key, in the
// order those last occurrences appear.
func Deduplicate(records []Record) []Record {
	last := make(map[RecordKey]int, len(records))
	for i, r := range records {
		last[r.Key()] = i
	}

	out := make([]Record, 0, len(last))
	for i, r := range records {
		if last[r.Key()] == i {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot returns the current contents, or ErrUninitialized before the first
// successful Load.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, ErrUninitialized
	}
	return s.snap, nil
}

// state returns the snapshot and threshold as one consistent pair.
func (s *Store) state() (Snapshot, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, 0, ErrUninitialized
	}
	return s.snap, s.threshold, nil
}

// Threshold returns the current low-stock threshold.
func (s *Store) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// SetThreshold sets the low-stock threshold from any integer-coercible value.
// Non-integer or negative values fail with a *ValidationError and leave the
// threshold unchanged.
func (s *Store) SetThreshold(v any) error {
	n, err := CoerceInt("threshold", v)
	if err != nil {
		return &ValidationError{Field: "threshold", Value: v, Message: "must be an integer", Err: err}
	}
	if n < 0 {
		return &ValidationError{Field: "threshold", Value: v, Message: "must not be negative"}
	}

	s.mu.Lock()
	s.threshold = n
	s.mu.Unlock()
	return nil
}

// LowStock returns records with quantity at or below the current threshold.
func (s *Store) LowStock() ([]Record, error) {
	snap, threshold, err := s.state()
	if err != nil {
		return nil, err
	}
	return lowStock(snap, threshold), nil
}

// LowStockAt returns records with quantity at or below threshold.
func (s *Store) LowStockAt(threshold int) ([]Record, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return lowStock(snap, threshold), nil
}

func lowStock(snap Snapshot, threshold int) []Record {
	var out []Record
	for _, r := range snap.All() {
		if r.Quantity <= threshold {
			out = append(out, r)
		}
	}
	return out
}

// Search filters the current contents. See Search.
func (s *Store) Search(q Query) ([]Record, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return Search(snap, q), nil
}

// Alerts evaluates the current contents against the current threshold.
func (s *Store) Alerts() ([]Alert, error) {
	snap, threshold, err := s.state()
	if err != nil {
		return nil, err
	}
	return CheckAlerts(snap, threshold, s.logger), nil
}

// Report generates the summary report for the current contents.
func (s *Store) Report() (Report, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return Report{}, err
	}
	return GenerateReport(snap)
}

// WriteReport generates the report and hands it to w for path.
func (s *Store) WriteReport(w ReportWriter, path string) (Report, error) {
	rep, err := s.Report()
	if err != nil {
		return Report{}, err
	}
	if err := DeliverReport(w, path, rep); err != nil {
		return Report{}, err
	}
	s.logger.Info("report written", "path", path, "rows", rep.Len())
	return rep, nil
}
