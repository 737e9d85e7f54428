package core

// ingest.go consolidates every tabular file in a directory into one Dataset.
//
// Files are parsed in parallel by a bounded errgroup; results land in a slice
// indexed by discovery position so the concatenated order never depends on
// which worker finished first. Problems with a single file (unreadable,
// missing columns, too large, no usable rows) skip that file with a warning.
// Only a missing directory, an empty directory, a dataset with no rows at all,
// or cancellation fail the whole run.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/inventory/internal/logging"
	"golang.org/x/sync/errgroup"
)

// ContextCheckInterval is how often (in rows) parsing checks for cancellation.
var ContextCheckInterval = 100

// IngestOptions controls discovery and parsing.
type IngestOptions struct {
	Extension   string // tabular file extension, with dot (default ".csv")
	Workers     int    // files parsed concurrently (default 4)
	MaxFileSize int64  // bytes; 0 disables the limit
	Lenient     bool   // coerce rows without enforcing record invariants
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.Extension == "" {
		o.Extension = ".csv"
	}
	if !strings.HasPrefix(o.Extension, ".") {
		o.Extension = "." + o.Extension
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// Ingester discovers and parses inventory files.
type Ingester struct {
	opts   IngestOptions
	logger *slog.Logger
}

// NewIngester creates an Ingester. A nil logger falls back to slog.Default().
func NewIngester(opts IngestOptions, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{opts: opts.withDefaults(), logger: logger}
}

// fileResult is one worker's output.
type fileResult struct {
	outcome FileOutcome
	records []Record
}

// Ingest reads every matching file directly inside dir (non-recursive) and
// concatenates the accepted rows in file order, then row order. The result is
// not deduplicated.
func (in *Ingester) Ingest(ctx context.Context, dir string) (*Dataset, error) {
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx)
	}
	logger := logging.FromContext(ctx, in.logger)

	paths, err := in.discover(dir)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			res, err := in.readFile(gctx, path, logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", dir, err)
	}

	ds := &Dataset{
		RunID: logging.RunID(ctx),
		Dir:   dir,
		Files: make([]FileOutcome, 0, len(results)),
	}
	for _, res := range results {
		out := res.outcome
		ds.Files = append(ds.Files, out)
		if out.Skipped {
			logger.Warn("file skipped", "file", out.Path, "reason", out.Reason)
			continue
		}
		logger.Info("file processed",
			"file", out.Path,
			"rows", out.Rows,
			"skipped_rows", out.SkippedRows,
			"bytes", out.Bytes,
		)
		ds.Records = append(ds.Records, res.records...)
	}

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: %d file(s) in %s, none usable (%s)",
			ErrNoValidData, len(paths), dir, strings.Join(skipReasons(ds.Files), "; "))
	}
	return ds, nil
}

// skipReasons lists each file's skip reason as "name: reason".
func skipReasons(files []FileOutcome) []string {
	reasons := make([]string, 0, len(files))
	for _, f := range files {
		if f.Skipped {
			reasons = append(reasons, filepath.Base(f.Path)+": "+f.Reason)
		}
	}
	return reasons
}

// discover lists matching files in name order.
func (in *Ingester) discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), in.opts.Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrDirectoryNotFound, in.opts.Extension, dir)
	}
	return paths, nil
}

// readFile parses one file. Only cancellation is returned as an error; every
// other problem is recorded on the outcome.
func (in *Ingester) readFile(ctx context.Context, path string, logger *slog.Logger) (res fileResult, err error) {
	res.outcome.Path = path

	var src *sourceReader
	defer func() {
		if src != nil {
			res.outcome.Bytes = src.BytesRead()
		}
	}()

	skip := func(reason string) (fileResult, error) {
		res.outcome.Skipped = true
		res.outcome.Reason = reason
		res.records = nil
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return skip(fmt.Sprintf("unreadable: %v", err))
	}
	if in.opts.MaxFileSize > 0 && info.Size() > in.opts.MaxFileSize {
		return skip(fmt.Sprintf("%v: %d bytes exceeds limit of %d", ErrFileTooLarge, info.Size(), in.opts.MaxFileSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return skip(fmt.Sprintf("unreadable: %v", err))
	}
	defer f.Close()

	src, err = wrapSource(f, in.opts.MaxFileSize)
	if err != nil {
		return skip(fmt.Sprintf("unreadable: %v", err))
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return skip("empty file")
	}
	if err != nil {
		return skip(fmt.Sprintf("cannot parse: %v", err))
	}

	idx := MakeHeaderIndex(header)
	if missing := MissingColumns(idx); len(missing) > 0 {
		return skip("missing required column(s): " + strings.Join(missing, ", "))
	}

	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return skip(fmt.Sprintf("cannot parse: %v", err))
		}
		if isEmptyRow(row) {
			continue
		}

		line, _ := r.FieldPos(0)
		rec, err := in.toRecord(rowToRaw(row, idx))
		if err != nil {
			res.outcome.SkippedRows++
			logger.Warn("row skipped", "file", path, "line", line, "error", err)
			continue
		}
		res.records = append(res.records, rec)
	}

	if len(res.records) == 0 {
		return skip("no usable rows")
	}
	res.outcome.Rows = len(res.records)
	return res, nil
}

func (in *Ingester) toRecord(raw RawRow) (Record, error) {
	if in.opts.Lenient {
		return CoerceRaw(raw)
	}
	return ValidateRaw(raw)
}

// rowToRaw picks the required columns out of a parsed row. Cells beyond the
// end of a short row are left out, which surfaces as a MissingFieldError.
func rowToRaw(row []string, idx HeaderIndex) RawRow {
	raw := make(RawRow, len(RequiredFields))
	for _, f := range RequiredFields {
		pos := idx[f]
		if pos < len(row) {
			raw[f] = row[pos]
		}
	}
	return raw
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
