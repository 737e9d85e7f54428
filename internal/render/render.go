// Package render draws inventory data as terminal tables.
//
// Styles are bound to the destination writer through a lipgloss renderer, so
// colour is dropped automatically when output is piped or captured.
package render

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/inventory/internal/core"
)

// Palette
var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorBorder  = lipgloss.Color("#16858E")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#2C4A54")
)

// NoResults is printed in place of an empty table.
const NoResults = "No results."

// printer formats numbers with thousands grouping.
var printer = message.NewPrinter(language.English)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	number lipgloss.Style
	border lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		title:  re.NewStyle().Bold(true).Foreground(colorAccent),
		header: re.NewStyle().Bold(true).Padding(0, 1),
		cell:   re.NewStyle().Padding(0, 1),
		number: re.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		border: re.NewStyle().Foreground(colorBorder),
		warn:   re.NewStyle().Foreground(colorWarning).Bold(true),
		muted:  re.NewStyle().Foreground(colorMuted),
	}
}

// newTable builds a bordered table whose columns listed in numeric are
// right-aligned.
func (s styles) newTable(headers []string, rows [][]string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.header
			case right[col]:
				return s.number
			default:
				return s.cell
			}
		})
}

func (s styles) section(w io.Writer, title string, t *table.Table) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, s.title.Render(title)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (s styles) empty(w io.Writer, title string) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, s.title.Render(title)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, s.muted.Render(NoResults))
	return err
}

// Count formats an integer with thousands grouping.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Money formats an amount with two decimals and thousands grouping.
func Money(f float64) string {
	return printer.Sprintf("%.2f", f)
}

// FormatValue formats a report value for display. Undefined values read "n/a".
func FormatValue(v core.Value) string {
	switch v.Kind {
	case core.KindCount:
		return Count(int(v.Number))
	case core.KindAmount:
		return Money(v.Number)
	default:
		return "n/a"
	}
}

// Records renders products with their stock value.
func Records(w io.Writer, title string, records []core.Record) error {
	s := newStyles(w)
	if len(records) == 0 {
		return s.empty(w, title)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Name,
			r.Category,
			Count(r.Quantity),
			Money(r.UnitPrice),
			Money(r.Value()),
		})
	}
	t := s.newTable([]string{"Name", "Category", "Quantity", "Unit price", "Value"}, rows, 2, 3, 4)
	if err := s.section(w, title, t); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, s.muted.Render(fmt.Sprintf("%s product(s)", Count(len(records)))))
	return err
}

// Alerts renders low-stock alerts.
func Alerts(w io.Writer, alerts []core.Alert) error {
	s := newStyles(w)
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, s.muted.Render("No low-stock products."))
		return err
	}

	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{a.Name, a.Category, Count(a.Quantity), Count(a.Threshold)})
	}
	title := fmt.Sprintf("%d product(s) at or below threshold %d", len(alerts), alerts[0].Threshold)
	if _, err := fmt.Fprintln(w, s.warn.Render(title)); err != nil {
		return err
	}
	return s.section(w, "", s.newTable([]string{"Product", "Category", "Quantity", "Threshold"}, rows, 2, 3))
}

// Report renders a summary report: the global rows, then one table row per
// category. Grouping comes from core.GroupReport, so a report read back from
// disk renders the same as a freshly generated one.
func Report(w io.Writer, rep core.Report) error {
	s := newStyles(w)
	if rep.Len() == 0 {
		return s.empty(w, "Inventory report")
	}

	global, blocks := core.GroupReport(rep)

	rows := make([][]string, 0, len(global))
	for _, r := range global {
		rows = append(rows, []string{r.Metric, FormatValue(r.Value)})
	}
	if err := s.section(w, "Inventory report", s.newTable([]string{"Metric", "Value"}, rows, 1)); err != nil {
		return err
	}

	if len(blocks) == 0 {
		return nil
	}

	headers := []string{"Category"}
	for _, r := range blocks[0].Rows {
		headers = append(headers, r.Metric)
	}
	numeric := make([]int, 0, len(headers)-1)
	for i := 1; i < len(headers); i++ {
		numeric = append(numeric, i)
	}

	catRows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		row := []string{b.Category}
		for _, r := range b.Rows {
			row = append(row, FormatValue(r.Value))
		}
		catRows = append(catRows, row)
	}
	return s.section(w, "By category", s.newTable(headers, catRows, numeric...))
}

// Files renders per-file ingestion outcomes.
func Files(w io.Writer, files []core.FileOutcome) error {
	s := newStyles(w)
	if len(files) == 0 {
		return s.empty(w, "Files")
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		status := "ok"
		if f.Skipped {
			status = "skipped: " + f.Reason
		}
		rows = append(rows, []string{
			filepath.Base(f.Path),
			Count(f.Rows),
			Count(f.SkippedRows),
			humanize.Bytes(uint64(max(f.Bytes, 0))),
			status,
		})
	}
	return s.section(w, "Files", s.newTable([]string{"File", "Rows", "Rejected", "Size", "Status"}, rows, 1, 2, 3))
}
