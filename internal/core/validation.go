package core

// validation.go turns loosely typed rows into Records.
//
// Validation happens in three stages, and the first failing stage decides the
// error type:
//  1. Presence: every required key must exist (MissingFieldError)
//  2. Coercion: quantity to int, unit_price to float, name/category to text (TypeConversionError)
//  3. Invariants: non-negative numbers, non-empty text (ValidationError)
//
// Coercion also normalizes: text is trimmed and unit_price is rounded to two
// decimals, half away from zero.

import (
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// invariantOrder is the order in which violated invariants are reported.
var invariantOrder = []string{FieldQuantity, FieldUnitPrice, FieldName, FieldCategory}

var (
	validateOnce sync.Once
	structValid  *validator.Validate
)

// recordValidator returns the shared validator. Field errors are named by the
// json tag so they line up with the column names.
func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		structValid = validator.New()
		structValid.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValid
}

// ValidateRaw builds a Record from an untyped row and enforces every invariant.
func ValidateRaw(raw RawRow) (Record, error) {
	rec, err := CoerceRaw(raw)
	if err != nil {
		return Record{}, err
	}
	if err := checkInvariants(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// CoerceRaw performs the presence and coercion stages only. The result is
// trimmed and rounded but may still hold a negative quantity or empty name.
func CoerceRaw(raw RawRow) (Record, error) {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Record{}, &MissingFieldError{Fields: missing}
	}

	name, err := CoerceText(FieldName, raw[FieldName])
	if err != nil {
		return Record{}, err
	}
	qty, err := CoerceInt(FieldQuantity, raw[FieldQuantity])
	if err != nil {
		return Record{}, err
	}
	price, err := CoerceFloat(FieldUnitPrice, raw[FieldUnitPrice])
	if err != nil {
		return Record{}, err
	}
	category, err := CoerceText(FieldCategory, raw[FieldCategory])
	if err != nil {
		return Record{}, err
	}

	return normalize(Record{Name: name, Quantity: qty, UnitPrice: price, Category: category}), nil
}

// NewRecord builds a Record from typed fields, normalizing and validating it.
func NewRecord(name string, quantity int, unitPrice float64, category string) (Record, error) {
	rec := normalize(Record{Name: name, Quantity: quantity, UnitPrice: unitPrice, Category: category})
	if err := checkInvariants(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func normalize(r Record) Record {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.UnitPrice = roundPrice(r.UnitPrice)
	return r
}

// roundPrice rounds to two decimals. NaN and infinities pass through so the
// invariant check can reject them.
func roundPrice(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	rounded, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return rounded
}

func checkInvariants(r Record) error {
	if math.IsNaN(r.UnitPrice) || math.IsInf(r.UnitPrice, 0) {
		return &ValidationError{Field: FieldUnitPrice, Value: r.UnitPrice, Message: "must be a finite number"}
	}

	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Message: err.Error(), Err: err}
	}

	byField := make(map[string]validator.FieldError, len(fieldErrs))
	for _, fe := range fieldErrs {
		byField[fe.Field()] = fe
	}
	for _, field := range invariantOrder {
		if fe, ok := byField[field]; ok {
			return &ValidationError{Field: field, Value: fe.Value(), Message: invariantMessage(fe)}
		}
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Value: fe.Value(), Message: invariantMessage(fe)}
}

func invariantMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gte":
		return "must not be negative"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
