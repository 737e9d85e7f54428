package core

// streaming.go wraps source files so the CSV parser sees clean input without
// the whole file being loaded into memory:
//
//   - the UTF-8 byte order mark written by spreadsheet exports is dropped
//   - invalid UTF-8 bytes become '?'
//   - reads past the configured size limit fail with ErrFileTooLarge
//   - bytes read are counted for the "file processed" log event

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrFileTooLarge is returned by a size-limited reader once the limit is passed.
var ErrFileTooLarge = errors.New("file too large")

// countingReader tracks bytes read from the underlying reader.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// limitedReader passes through at most max bytes and fails if the source
// has more. A max of zero or less disables the limit.
type limitedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.max <= 0 {
		return l.r.Read(p)
	}

	remaining := l.max - l.read
	if remaining <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.max)
		}
		return 0, err
	}

	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}

// sanitizingReader yields valid UTF-8 only, one rune at a time from a
// buffered source.
type sanitizingReader struct {
	br *bufio.Reader
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for n < len(p) {
		r, size, err := s.br.ReadRune()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}

		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		if utf8.RuneLen(r) > len(p)-n {
			_ = s.br.UnreadRune()
			break
		}
		n += utf8.EncodeRune(p[n:], r)

		if s.br.Buffered() == 0 && n > 0 {
			// Return what we have rather than block on the next fill.
			break
		}
	}
	return n, nil
}

// skipBOM discards a leading byte order mark, if any.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// sourceReader is the wrapped form of one input file.
type sourceReader struct {
	io.Reader
	counter *countingReader
}

// BytesRead reports how many raw bytes were consumed from the file.
func (s *sourceReader) BytesRead() int64 {
	return s.counter.n
}

// wrapSource applies size limiting, BOM skipping and UTF-8 sanitization.
func wrapSource(r io.Reader, maxSize int64) (*sourceReader, error) {
	counter := &countingReader{r: r}
	br := bufio.NewReader(&limitedReader{r: counter, max: maxSize})
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	return &sourceReader{Reader: &sanitizingReader{br: br}, counter: counter}, nil
}
