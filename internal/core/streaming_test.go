package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestWrapSource_SkipsBOM(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "with BOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,quantity")...),
			want:  "name,quantity",
		},
		{
			name:  "without BOM",
			input: []byte("name,quantity"),
			want:  "name,quantity",
		},
		{
			name:  "BOM only",
			input: []byte{0xEF, 0xBB, 0xBF},
			want:  "",
		},
		{
			name:  "shorter than BOM",
			input: []byte("ab"),
			want:  "ab",
		},
		{
			name:  "empty",
			input: []byte{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := wrapSource(bytes.NewReader(tt.input), 0)
			if err != nil {
				t.Fatalf("wrapSource() error: %v", err)
			}
			got, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapSource_SanitizesUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "ascii", input: []byte("hello"), want: "hello"},
		{name: "valid multibyte", input: []byte("café €"), want: "café €"},
		{name: "invalid byte", input: []byte{'a', 0xFF, 'b'}, want: "a?b"},
		{name: "latin-1 e acute", input: []byte{'c', 'a', 'f', 0xE9}, want: "caf?"},
		{name: "truncated sequence", input: []byte{'x', 0xE2, 0x82}, want: "x??"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// OneByteReader forces multibyte runes to span reads.
			src, err := wrapSource(iotest.OneByteReader(bytes.NewReader(tt.input)), 0)
			if err != nil {
				t.Fatalf("wrapSource() error: %v", err)
			}
			got, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("ReadAll() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapSource_CountsBytes(t *testing.T) {
	input := "name,quantity\nWidget,3\n"
	src, err := wrapSource(strings.NewReader(input), 0)
	if err != nil {
		t.Fatalf("wrapSource() error: %v", err)
	}
	if _, err := io.ReadAll(src); err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if src.BytesRead() != int64(len(input)) {
		t.Errorf("BytesRead() = %d, want %d", src.BytesRead(), len(input))
	}
}

func TestWrapSource_SizeLimit(t *testing.T) {
	input := strings.Repeat("x", 64)

	src, err := wrapSource(strings.NewReader(input), 16)
	if err != nil {
		t.Fatalf("wrapSource() error: %v", err)
	}
	_, err = io.ReadAll(src)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadAll() error = %v, want ErrFileTooLarge", err)
	}

	src, err = wrapSource(strings.NewReader(input), 64)
	if err != nil {
		t.Fatalf("wrapSource() error: %v", err)
	}
	if _, err := io.ReadAll(src); err != nil {
		t.Errorf("ReadAll() at exact limit error = %v", err)
	}
}
