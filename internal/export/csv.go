// Package export persists inventory reports as CSV files and reads them back.
//
// The file has a "Metric,Value" header followed by one row per report row.
// Counts are written as integers, amounts with two decimals, and undefined
// values as an empty cell.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/inventory/internal/core"
)

// Header is the first row of every report file.
var Header = []string{"Metric", "Value"}

// CSVWriter writes reports to CSV files. It implements core.ReportWriter.
type CSVWriter struct {
	// Perm is the file mode of new report files (default 0o644).
	Perm os.FileMode
}

var _ core.ReportWriter = CSVWriter{}

// WriteReport writes r to path. The file is written to a temporary name in
// the same directory and renamed into place, so readers never see a partial
// report.
func (w CSVWriter) WriteReport(path string, r core.Report) error {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Encode(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Encode writes r as CSV to w.
func Encode(w io.Writer, r core.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range r.Rows {
		if err := cw.Write([]string{row.Metric, row.Value.String()}); err != nil {
			return fmt.Errorf("write row %q: %w", row.Metric, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ReadReport reads a report file written by CSVWriter.
func ReadReport(path string) (core.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Report{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a report from r. The header row is required; any other
// column count is an error.
func Decode(r io.Reader) (core.Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.Report{}, errors.New("empty report")
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("read header: %w", err)
	}
	if !strings.EqualFold(core.CleanCell(header[0]), Header[0]) || !strings.EqualFold(core.CleanCell(header[1]), Header[1]) {
		return core.Report{}, fmt.Errorf("unexpected header %q", header)
	}

	var rep core.Report
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Report{}, fmt.Errorf("read row: %w", err)
		}
		v, err := core.ParseValue(rec[1])
		if err != nil {
			return core.Report{}, fmt.Errorf("row %q: %w", rec[0], err)
		}
		rep.Rows = append(rep.Rows, core.ReportRow{Metric: rec[0], Value: v})
	}
	return rep, nil
}
