package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/inventory/internal/export"
)

// testEnv isolates a CLI run from the developer's environment.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("INVENTORY_CONFIG", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("STOCK_THRESHOLD", "")
	t.Setenv("REPORT_OUTPUT", filepath.Join(dir, "report.csv"))
	t.Setenv("REPORT_FORMAT", "")
	t.Setenv("LOG_FILE", "-")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	return dir
}

func writeData(t *testing.T, dir string) string {
	t.Helper()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))

	files := map[string]string{
		"a.csv": "name,quantity,unit_price,category\n" +
			"Hammer,5,12.50,Tools\n" +
			"Wrench,40,8.25,Tools\n",
		"b.csv": "Category,Name,Unit_Price,Quantity\n" +
			"Garden,Shovel,22.00,12\n" +
			"Tools,Hammer,13.00,3\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(data, name), []byte(content), 0o644))
	}
	return data
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	code, out, errOut := runCLI(t, "list", "-d", data, "--sort-by", "name")
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, out, "Shovel")
	assert.Contains(t, out, "Wrench")
	assert.Contains(t, out, "13.00", "later file wins for a duplicate product")
	assert.NotContains(t, out, "12.50")
	assert.Contains(t, out, "3 product(s)")
}

func TestRun_ListUnknownSortField(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	code, _, errOut := runCLI(t, "list", "-d", data, "--sort-by", "colour")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "Error:")
}

func TestRun_Search(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	code, out, errOut := runCLI(t, "search", "-d", data, "-c", "Tools", "--max-price", "10")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Wrench")
	assert.NotContains(t, out, "Hammer")

	code, out, _ = runCLI(t, "search", "-d", data, "-n", "nothing-like-this")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "No results.")
}

func TestRun_Alerts(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	code, out, errOut := runCLI(t, "alerts", "-d", data, "--threshold", "12")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "2 product(s) at or below threshold 12")
	assert.Contains(t, out, "Hammer")
	assert.Contains(t, out, "Shovel")

	code, out, _ = runCLI(t, "alerts", "-d", data, "--threshold", "0")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "No low-stock products.")
}

func TestRun_ReportCSV(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)
	path := filepath.Join(dir, "out", "summary.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	code, out, errOut := runCLI(t, "report", "-d", data, "-o", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Report written to")

	rep, err := export.ReadReport(path)
	require.NoError(t, err)
	// 5 global rows plus 4 for each of the two categories.
	assert.Equal(t, 13, rep.Len())

	code, out, errOut = runCLI(t, "report", "show", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Inventory report")
	assert.Contains(t, out, "Garden")
}

func TestRun_ReportConsole(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	path := filepath.Join(dir, "console.csv")

	code, out, errOut := runCLI(t, "report", "-d", data, "--format", "console", "-o", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Total products")
	assert.Contains(t, out, "By category")
	assert.NotContains(t, out, "Report written to")

	rep, err := export.ReadReport(path)
	require.NoError(t, err, "console format still writes the report file")
	assert.Equal(t, 13, rep.Len())
	assert.NoFileExists(t, filepath.Join(dir, "report.csv"), "explicit -o wins over REPORT_OUTPUT")
}

func TestRun_MissingDirectory(t *testing.T) {
	dir := testEnv(t)

	code, _, errOut := runCLI(t, "list", "-d", filepath.Join(dir, "nope"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "ING001")
}

func TestRun_NoUsableFiles(t *testing.T) {
	dir := testEnv(t)
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "a.csv"), []byte("name,quantity\nA,1\n"), 0o644))

	code, _, errOut := runCLI(t, "list", "-d", data)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "VAL004")
	assert.Contains(t, errOut, "a.csv: missing required column(s): unit_price, category")
}

func TestRun_InvalidConfig(t *testing.T) {
	testEnv(t)
	t.Setenv("INGEST_WORKERS", "0")

	code, _, errOut := runCLI(t, "list")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "INGEST_WORKERS")
}

func TestRun_FlagOverridesInvalidEnv(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)
	t.Setenv("STOCK_THRESHOLD", "-1")
	t.Setenv("DATA_DIR", "   ")

	code, out, errOut := runCLI(t, "alerts", "-d", data, "--threshold", "4")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "1 product(s) at or below threshold 4")
}

func TestRun_Interrupted(t *testing.T) {
	dir := testEnv(t)
	data := writeData(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"watch", "-d", data}, &stdout, &stderr)
	assert.Equal(t, exitInterrupted, code)
}
