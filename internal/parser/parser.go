package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
)

// Options controls how a tabular file is read.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t'.
	Delimiter rune
	// SheetName selects an XLSX sheet (case-insensitive). Takes precedence over SheetIndex.
	SheetName string
	// SheetIndex is the 1-based XLSX sheet position used when SheetName is empty.
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Reader turns a tabular file into a schema.Table.
type Reader interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt Options) (*schema.Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates a file format without a registered reader.
var ErrUnsupported = errors.New("unsupported table format (use .csv, .tsv or .xlsx)")

// ReadFile selects a reader based on the file name and parses the file.
func ReadFile(path string, opt Options) (*schema.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return Read(path, f, opt)
}

// Read parses r using the reader registered for name's extension. It is used
// for uploads where no file exists on disk.
func Read(name string, r io.Reader, opt Options) (*schema.Table, error) {
	for _, rd := range registry {
		if !rd.CanRead(name) {
			continue
		}
		t, err := rd.Read(r, opt)
		if err != nil {
			return nil, err
		}
		t.Name = filepath.Base(name)
		return t, nil
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupported)
}

// cleanHeader trims whitespace and a leading UTF-8 BOM from header cells.
// Case is preserved: column matching stays case-sensitive.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
