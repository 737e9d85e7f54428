package core

import "log/slog"

// CheckAlerts returns an alert for every record whose quantity is at or below
// threshold, in snapshot order. Each alert is also logged as a warning.
func CheckAlerts(snap Snapshot, threshold int, logger *slog.Logger) []Alert {
	if logger == nil {
		logger = slog.Default()
	}

	var alerts []Alert
	for _, r := range snap.All() {
		if r.Quantity > threshold {
			continue
		}
		a := Alert{Name: r.Name, Category: r.Category, Quantity: r.Quantity, Threshold: threshold}
		alerts = append(alerts, a)
		logger.Warn("low stock",
			"product", a.Name,
			"category", a.Category,
			"quantity", a.Quantity,
			"threshold", a.Threshold,
			"message", a.Message(),
		)
	}
	return alerts
}
