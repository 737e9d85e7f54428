package core

// report.go computes the summary report.
//
// The report is a flat (Metric, Value) table. Global rows come first and
// carry no category separator in their label; per-category rows are labelled
// "<Category> - <Metric>". Presentation code relies on that convention alone
// to regroup the rows (see GroupReport), so a category whose name contains the
// separator will be split at its first occurrence.

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CategorySeparator joins a category name and a metric label.
const CategorySeparator = " - "

// Global metric labels, in report order.
const (
	MetricTotalProducts = "Total products"
	MetricCategoryCount = "Category count"
	MetricTotalValue    = "Total stock value"
	MetricAveragePrice  = "Average price"
)

// MetricLowStock labels the count of records below ReportLowStockLimit.
var MetricLowStock = fmt.Sprintf("Low stock products (<%d)", ReportLowStockLimit)

// Per-category metric labels, in report order.
const (
	MetricCategoryProducts = "Product count"
	MetricCategoryValue    = "Total value"
	MetricCategoryAvgPrice = "Average price"
	MetricCategoryStock    = "Total stock"
)

// GlobalRowCount is the number of rows before the first category block.
const GlobalRowCount = 5

// CategoryRowCount is the number of rows in each category block.
const CategoryRowCount = 4

// ReportWriter persists a report to path.
type ReportWriter interface {
	WriteReport(path string, r Report) error
}

// aggregate accumulates sums for one slice of the dataset.
type aggregate struct {
	count    int
	quantity int
	value    decimal.Decimal
	prices   decimal.Decimal
}

func (a *aggregate) add(r Record) {
	price := decimal.NewFromFloat(r.UnitPrice)
	a.count++
	a.quantity += r.Quantity
	a.value = a.value.Add(price.Mul(decimal.NewFromInt(int64(r.Quantity))))
	a.prices = a.prices.Add(price)
}

func (a *aggregate) totalValue() Value {
	return Amount(toFloat(a.value.Round(2)))
}

// meanPrice is Undefined over zero rows.
func (a *aggregate) meanPrice() Value {
	if a.count == 0 {
		return Undefined()
	}
	mean := a.prices.Div(decimal.NewFromInt(int64(a.count)))
	return Amount(toFloat(mean.Round(2)))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// GenerateReport computes global and per-category statistics. Categories are
// reported in order of first appearance. An empty snapshot fails with
// ErrUninitialized.
func GenerateReport(snap Snapshot) (Report, error) {
	if snap.Len() == 0 {
		return Report{}, ErrUninitialized
	}

	var (
		global   aggregate
		lowStock int
		order    []string
		byCat    = make(map[string]*aggregate)
	)

	for _, r := range snap.All() {
		global.add(r)
		if r.Quantity < ReportLowStockLimit {
			lowStock++
		}
		agg, ok := byCat[r.Category]
		if !ok {
			agg = &aggregate{}
			byCat[r.Category] = agg
			order = append(order, r.Category)
		}
		agg.add(r)
	}

	rows := make([]ReportRow, 0, GlobalRowCount+CategoryRowCount*len(order))
	rows = append(rows,
		ReportRow{Metric: MetricTotalProducts, Value: Count(global.count)},
		ReportRow{Metric: MetricCategoryCount, Value: Count(len(order))},
		ReportRow{Metric: MetricTotalValue, Value: global.totalValue()},
		ReportRow{Metric: MetricAveragePrice, Value: global.meanPrice()},
		ReportRow{Metric: MetricLowStock, Value: Count(lowStock)},
	)

	for _, cat := range order {
		agg := byCat[cat]
		rows = append(rows,
			ReportRow{Metric: categoryLabel(cat, MetricCategoryProducts), Value: Count(agg.count)},
			ReportRow{Metric: categoryLabel(cat, MetricCategoryValue), Value: agg.totalValue()},
			ReportRow{Metric: categoryLabel(cat, MetricCategoryAvgPrice), Value: agg.meanPrice()},
			ReportRow{Metric: categoryLabel(cat, MetricCategoryStock), Value: Count(agg.quantity)},
		)
	}

	return Report{Rows: rows}, nil
}

func categoryLabel(category, metric string) string {
	return category + CategorySeparator + metric
}

// GroupReport splits report rows into global rows and per-category blocks
// using only the label convention. Blocks keep the order in which their
// categories first appear.
func GroupReport(r Report) (global []ReportRow, blocks []CategoryBlock) {
	index := make(map[string]int)
	for _, row := range r.Rows {
		cat, metric, found := strings.Cut(row.Metric, CategorySeparator)
		if !found {
			global = append(global, row)
			continue
		}
		i, ok := index[cat]
		if !ok {
			i = len(blocks)
			index[cat] = i
			blocks = append(blocks, CategoryBlock{Category: cat})
		}
		blocks[i].Rows = append(blocks[i].Rows, ReportRow{Metric: metric, Value: row.Value})
	}
	return global, blocks
}

// DeliverReport hands r to w. Any failure is returned as *ReportWriteError.
func DeliverReport(w ReportWriter, path string, r Report) error {
	if err := w.WriteReport(path, r); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	return nil
}
