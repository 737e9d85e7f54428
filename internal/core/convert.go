package core

// convert.go coerces untyped cell values into record field types.
//
// Values arrive either as strings from parsed files or as Go scalars from
// callers. Strings get the usual spreadsheet cleanup first:
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives "(12.50)"
//   - Excel formula prefixes (="value")
//   - Surrounding quotes and whitespace

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches signed integers and decimals.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ToNumeric parses a spreadsheet-style number into pgtype.Numeric.
// Returns Valid=false for empty or malformed input.
func ToNumeric(s string) pgtype.Numeric {
	s = CleanCell(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// CoerceInt converts v to an int. Integral floats and numeric strings are
// accepted; fractional values, booleans and nil are not.
func CoerceInt(field string, v any) (int, error) {
	fail := &TypeConversionError{Field: field, Value: v, Want: "integer"}

	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		if x > math.MaxInt || x < math.MinInt {
			return 0, fail
		}
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint:
		if uint64(x) > math.MaxInt {
			return 0, fail
		}
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, fail
		}
		return int(x), nil
	case float32:
		return floatToInt(float64(x), fail)
	case float64:
		return floatToInt(x, fail)
	case string:
		n := ToNumeric(x)
		if !n.Valid {
			return 0, fail
		}
		i, err := n.Int64Value()
		if err != nil || !i.Valid {
			return 0, fail
		}
		return int(i.Int64), nil
	default:
		return 0, fail
	}
}

func floatToInt(f float64, fail error) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fail
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fail
	}
	return int(f), nil
}

// CoerceFloat converts v to a float64. Integers and numeric strings are accepted.
func CoerceFloat(field string, v any) (float64, error) {
	fail := &TypeConversionError{Field: field, Value: v, Want: "number"}

	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		n := ToNumeric(x)
		if !n.Valid {
			return 0, fail
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0, fail
		}
		return f.Float64, nil
	default:
		return 0, fail
	}
}

// CoerceText converts v to a string. Only strings and fmt.Stringer values
// are text; numbers are rejected so a shifted column is caught early.
func CoerceText(field string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", &TypeConversionError{Field: field, Value: v, Want: "text"}
	}
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching. When a header repeats,
// the last occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// MissingColumns returns the required fields absent from idx, in canonical order.
func MissingColumns(idx HeaderIndex) []string {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := idx[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
