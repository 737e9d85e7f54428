package core

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Query holds optional search filters. Zero values impose no constraint.
type Query struct {
	Name     string   // case-insensitive substring of the product name
	Category string   // exact, case-sensitive category
	MinPrice *float64 // inclusive
	MaxPrice *float64 // inclusive
	LowStock bool     // quantity strictly below ReportLowStockLimit
}

// Price returns a pointer for use in Query bounds.
func Price(f float64) *float64 { return &f }

// Search returns the records matching every filter in q, in snapshot order.
// The result is a fresh slice.
func Search(snap Snapshot, q Query) []Record {
	folder := cases.Fold()
	needle := ""
	if q.Name != "" {
		needle = folder.String(q.Name)
	}

	out := []Record{}
	for _, r := range snap.All() {
		if needle != "" && !strings.Contains(folder.String(r.Name), needle) {
			continue
		}
		if q.Category != "" && r.Category != q.Category {
			continue
		}
		if q.MinPrice != nil && r.UnitPrice < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && r.UnitPrice > *q.MaxPrice {
			continue
		}
		if q.LowStock && r.Quantity >= ReportLowStockLimit {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortFields lists the fields accepted by SortRecords.
var SortFields = []string{FieldName, FieldCategory, FieldQuantity, FieldUnitPrice}

// SortRecords returns a stably sorted copy of records.
func SortRecords(records []Record, field string, desc bool) ([]Record, error) {
	var cmp func(a, b Record) int
	switch field {
	case FieldName:
		cmp = func(a, b Record) int { return strings.Compare(a.Name, b.Name) }
	case FieldCategory:
		cmp = func(a, b Record) int { return strings.Compare(a.Category, b.Category) }
	case FieldQuantity:
		cmp = func(a, b Record) int { return a.Quantity - b.Quantity }
	case FieldUnitPrice:
		cmp = func(a, b Record) int {
			switch {
			case a.UnitPrice < b.UnitPrice:
				return -1
			case a.UnitPrice > b.UnitPrice:
				return 1
			}
			return 0
		}
	default:
		return nil, &ValidationError{
			Field:   "sort",
			Value:   field,
			Message: fmt.Sprintf("must be one of %s", strings.Join(SortFields, ", ")),
		}
	}

	out := slices.Clone(records)
	if desc {
		slices.SortStableFunc(out, func(a, b Record) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out, nil
}
