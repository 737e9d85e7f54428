package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/inventory/internal/core"
)

func TestNumberFormatting(t *testing.T) {
	assert.Equal(t, "1,234", Count(1234))
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "1,250.50", Money(1250.5))
	assert.Equal(t, "0.10", Money(0.1))

	assert.Equal(t, "12", FormatValue(core.Count(12)))
	assert.Equal(t, "3.00", FormatValue(core.Amount(3)))
	assert.Equal(t, "n/a", FormatValue(core.Undefined()))
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	err := Records(&buf, "Inventory", []core.Record{
		{Name: "Drill", Quantity: 1200, UnitPrice: 89.9, Category: "Power"},
		{Name: "Bit", Quantity: 3, UnitPrice: 2.5, Category: "Power"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Inventory")
	assert.Contains(t, out, "Unit price")
	assert.Contains(t, out, "Drill")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "107,880.00") // 1200 × 89.90
	assert.Contains(t, out, "2 product(s)")
}

func TestRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Records(&buf, "Search", nil))
	assert.Contains(t, buf.String(), NoResults)
}

func TestAlerts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Alerts(&buf, []core.Alert{
		{Name: "Bolt", Category: "Hardware", Quantity: 2, Threshold: 10},
	}))
	out := buf.String()
	assert.Contains(t, out, "1 product(s) at or below threshold 10")
	assert.Contains(t, out, "Bolt")

	buf.Reset()
	require.NoError(t, Alerts(&buf, nil))
	assert.Contains(t, buf.String(), "No low-stock products.")
}

func TestReport(t *testing.T) {
	snap := core.NewSnapshot([]core.Record{
		{Name: "Hammer", Quantity: 5, UnitPrice: 12.5, Category: "Tools"},
		{Name: "Lamp", Quantity: 1500, UnitPrice: 20, Category: "Home"},
	})
	rep, err := core.GenerateReport(snap)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, core.MetricTotalProducts)
	assert.Contains(t, out, "By category")
	assert.Contains(t, out, core.MetricCategoryProducts)
	assert.Contains(t, out, "30,062.50") // total stock value
	assert.Contains(t, out, "1,500")

	toolsLine := lineContaining(out, "Tools")
	require.NotEmpty(t, toolsLine)
	assert.Contains(t, toolsLine, "62.50")
}

func TestReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, core.Report{}))
	assert.Contains(t, buf.String(), NoResults)
}

func TestFiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Files(&buf, []core.FileOutcome{
		{Path: "/data/a.csv", Bytes: 2048, Rows: 10, SkippedRows: 1},
		{Path: "/data/b.csv", Bytes: 12, Skipped: true, Reason: "empty file"},
	}))

	out := buf.String()
	assert.Contains(t, out, "a.csv")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "skipped: empty file")
	assert.NotContains(t, out, "/data/")
}

func lineContaining(s, substr string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}
