package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Required field names. Every inventory file must carry these columns.
const (
	FieldName      = "name"
	FieldQuantity  = "quantity"
	FieldUnitPrice = "unit_price"
	FieldCategory  = "category"
)

// RequiredFields lists the columns every inventory file must provide, in
// canonical order.
var RequiredFields = []string{FieldName, FieldQuantity, FieldUnitPrice, FieldCategory}

// DefaultThreshold is the low-stock alert threshold a new Store starts with.
const DefaultThreshold = 10

// ReportLowStockLimit is the fixed limit behind the report's low-stock metric.
// Records with quantity strictly below it are counted, whatever the alert
// threshold is.
const ReportLowStockLimit = 10

// Record is one product's inventory entry. Values produced by NewRecord or
// ValidateRaw always satisfy the invariants: trimmed non-empty name and
// category, non-negative quantity, non-negative price rounded to 2 decimals.
type Record struct {
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Category  string  `json:"category" validate:"required"`
}

// Key returns the consolidation key (name, category).
func (r Record) Key() RecordKey {
	return RecordKey{Name: r.Name, Category: r.Category}
}

// Value returns quantity × unit price.
func (r Record) Value() float64 {
	return float64(r.Quantity) * r.UnitPrice
}

// ToRaw converts the record back into an untyped row.
func (r Record) ToRaw() RawRow {
	return RawRow{
		FieldName:      r.Name,
		FieldQuantity:  r.Quantity,
		FieldUnitPrice: r.UnitPrice,
		FieldCategory:  r.Category,
	}
}

// RecordKey identifies a product across source files.
type RecordKey struct {
	Name     string
	Category string
}

// RawRow is a loosely typed inventory entry, keyed by field name. Values are
// untyped scalars (strings from files, numbers from callers) and are coerced
// by ValidateRaw.
type RawRow map[string]any

// HeaderIndex maps column names (lowercase) to their position in a parsed row.
type HeaderIndex map[string]int

// Alert reports a record whose quantity is at or below the threshold in
// force when it was evaluated. Alerts are derived and never stored.
type Alert struct {
	Name      string
	Category  string
	Quantity  int
	Threshold int
}

// Message returns the human-readable alert text.
func (a Alert) Message() string {
	return fmt.Sprintf("low stock: %s (%s) has %d units, threshold %d", a.Name, a.Category, a.Quantity, a.Threshold)
}

// FileOutcome describes what happened to one source file during ingestion.
type FileOutcome struct {
	Path        string
	Bytes       int64
	Rows        int    // rows accepted into the dataset
	SkippedRows int    // rows rejected by validation
	Skipped     bool   // whole file skipped
	Reason      string // why the file was skipped
}

// Dataset is the result of one successful ingestion run: all accepted rows in
// file discovery order, then row order. It is not deduplicated.
type Dataset struct {
	RunID   string
	Dir     string
	Records []Record
	Files   []FileOutcome
}

// SkippedFiles returns the outcomes of files that were skipped.
func (d *Dataset) SkippedFiles() []FileOutcome {
	var out []FileOutcome
	for _, f := range d.Files {
		if f.Skipped {
			out = append(out, f)
		}
	}
	return out
}

// ValueKind tells how a report value is to be read.
type ValueKind int

const (
	KindCount ValueKind = iota
	KindAmount
	KindUndefined
)

// Value is a report cell. Undefined marks a statistic with no defined result,
// such as the mean of zero rows.
type Value struct {
	Kind   ValueKind
	Number float64
}

// Count returns an integer-valued report cell.
func Count(n int) Value { return Value{Kind: KindCount, Number: float64(n)} }

// Amount returns a decimal report cell.
func Amount(f float64) Value { return Value{Kind: KindAmount, Number: f} }

// Undefined returns the "no value" report cell.
func Undefined() Value { return Value{Kind: KindUndefined} }

// IsDefined reports whether the value carries a number.
func (v Value) IsDefined() bool { return v.Kind != KindUndefined }

// String formats counts as integers, amounts with two decimals and undefined
// values as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindCount:
		return strconv.FormatInt(int64(v.Number), 10)
	case KindAmount:
		return strconv.FormatFloat(v.Number, 'f', 2, 64)
	default:
		return ""
	}
}

// ParseValue reverses Value.String.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Undefined(), nil
	}
	if !strings.ContainsAny(s, ".eE") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid report value %q: %w", s, err)
		}
		return Count(int(n)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid report value %q: %w", s, err)
	}
	return Amount(f), nil
}

// ReportRow is one (metric label, value) pair of the summary report.
type ReportRow struct {
	Metric string
	Value  Value
}

// Report is the ordered summary: five global rows, then four rows per
// category in order of first appearance.
type Report struct {
	Rows []ReportRow
}

// Len returns the number of rows.
func (r Report) Len() int { return len(r.Rows) }

// CategoryBlock groups the per-category rows of a report. Metric labels in
// Rows have the category prefix removed.
type CategoryBlock struct {
	Category string
	Rows     []ReportRow
}
