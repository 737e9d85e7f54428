// Package core provides the inventory consolidation engine.
//
// This package holds all domain logic independent of any CLI or rendering
// layer. Commands, the scheduler and tests use it without modification, and
// it never prints: failures are returned as typed errors and events go to the
// *slog.Logger handed in by the caller.
//
// # Data Flow
//
// Data moves one way:
//
//	files -> Ingester -> Store -> {Search, CheckAlerts, GenerateReport} -> presentation
//
//  1. [Ingester.Ingest] discovers tabular files in a directory, parses them in
//     parallel and concatenates the accepted rows into a [Dataset]
//  2. [Store.Load] deduplicates the dataset by (name, category), keeping the
//     last occurrence, and publishes it as an immutable [Snapshot]
//  3. Queries, alerts and reports read snapshots, never the store's slice
//
// # Records
//
// Rows arrive as [RawRow] values (field name to untyped scalar) and become
// [Record] values through [ValidateRaw], which checks presence, then coercion,
// then invariants:
//
//	rec, err := core.ValidateRaw(core.RawRow{
//	    "name": " Widget ", "quantity": "3", "unit_price": "$1,250.005", "category": "Tools",
//	})
//	// rec.Name == "Widget", rec.UnitPrice == 1250.01
//
// # Low Stock
//
// Two notions coexist. Alerts and [Store.LowStock] use the configurable
// threshold with an inclusive comparison (quantity <= threshold). The report's
// low-stock metric counts quantity < [ReportLowStockLimit], whatever the
// threshold is.
//
// # Error Handling
//
// Errors are matchable with errors.Is / errors.As and mapped to coded user
// messages by [MapError]:
//
//   - VAL001-VAL004: Validation errors (missing field, type, invariant, column)
//   - ING001-ING003: Ingestion errors (no files, no data, file too large)
//   - STO001, RPT001, CTX001: Store, report delivery, interruption
package core
