// Package core provides the core types and interfaces for the randcsv table generator.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrInvalidArgument reports a configuration value outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState reports a broken internal invariant. It signals a
	// programming defect, not a user error.
	ErrInvalidState = errors.New("invalid state")
)

// DataType is the type of a regular (non-missing) cell value.
type DataType int

const (
	String DataType = iota
	Integer
	Float
)

// AllDataTypes lists every supported data type in declaration order.
var AllDataTypes = []DataType{String, Integer, Float}

func (d DataType) String() string {
	switch d {
	case String:
		return "str"
	case Integer:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Valid reports whether d is one of the declared data types.
func (d DataType) Valid() bool {
	return d >= String && d <= Float
}

// ParseDataType maps a data type name to a DataType. Both the short
// ("str", "int") and long ("string", "integer") spellings are accepted.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "str", "string":
		return String, nil
	case "int", "integer":
		return Integer, nil
	case "float":
		return Float, nil
	default:
		return 0, fmt.Errorf("%w: data type %q must be one of: str, int, float", ErrInvalidArgument, name)
	}
}

// ParseDataTypes parses a list of data type names, preserving order.
func ParseDataTypes(names []string) ([]DataType, error) {
	types := make([]DataType, 0, len(names))
	for _, name := range names {
		dt, err := ParseDataType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, dt)
	}
	return types, nil
}

// CellKind tells how a cell was produced, or for a table read back from a
// file, how its text classifies.
type CellKind int

const (
	KindString CellKind = iota
	KindInteger
	KindFloat
	KindNaN
	KindEmpty
	// KindLabel marks header labels and row index values.
	KindLabel
)

func (k CellKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindNaN:
		return "nan"
	case KindEmpty:
		return "empty"
	case KindLabel:
		return "label"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// NaNToken is the text written for NaN-kind cells.
const NaNToken = "nan"

// Cell is a single table value.
type Cell struct {
	Kind CellKind
	Text string
}

// NaNCell returns a NaN-kind missing cell.
func NaNCell() Cell { return Cell{Kind: KindNaN, Text: NaNToken} }

// EmptyCell returns an Empty-kind missing cell.
func EmptyCell() Cell { return Cell{Kind: KindEmpty} }

// LabelCell returns a header label or index cell.
func LabelCell(text string) Cell { return Cell{Kind: KindLabel, Text: text} }

// IsMissing reports whether the cell is NaN-kind or Empty-kind.
func (c Cell) IsMissing() bool {
	return c.Kind == KindNaN || c.Kind == KindEmpty
}

// String returns the cell as it appears in CSV output.
func (c Cell) String() string {
	switch c.Kind {
	case KindEmpty:
		return ""
	case KindNaN:
		return NaNToken
	default:
		return c.Text
	}
}

// Row is an ordered sequence of cells.
type Row []Cell

// Strings returns the formatted text of every cell in the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Table is a fully generated table. Row 0 is the header iff Header is set.
type Table struct {
	Rows   []Row
	Cols   int
	Header bool
	Index  bool
	// Seed is the seed the table was generated from.
	Seed uint64
}

// NumRows returns the number of rows including the header row.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Labels returns the column labels: the header row when present,
// otherwise "0".."cols-1".
func (t *Table) Labels() []string {
	if t.Header && len(t.Rows) > 0 {
		return t.Rows[0].Strings()
	}
	return ColumnLabels(t.Cols)
}

// DataRows returns the rows that follow the header, if any.
func (t *Table) DataRows() []Row {
	if t.Header && len(t.Rows) > 0 {
		return t.Rows[1:]
	}
	return t.Rows
}

// Strings returns the table as an ordered sequence of formatted rows.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Strings()
	}
	return out
}

// ColumnLabels returns "0".."n-1".
func ColumnLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// TableWriter serializes a generated table to some destination.
type TableWriter interface {
	// Write writes the whole table.
	Write(ctx context.Context, table *Table) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Type is the output format (csv, parquet, arrow, json).
	Type string

	// Path is the destination file. Ignored when Sink is set.
	Path string

	// Sink, when set, receives the output instead of a file at Path.
	// The writer does not close it.
	Sink io.Writer
}

// ParseCell classifies text read back from an output file. null marks a
// missing value in formats that can store one.
func ParseCell(text string, null bool) Cell {
	switch {
	case null || text == "":
		return EmptyCell()
	case text == NaNToken:
		return NaNCell()
	case IsLetters(text):
		return Cell{Kind: KindString, Text: text}
	case IsDigits(text):
		return Cell{Kind: KindInteger, Text: text}
	case isDecimal(text):
		return Cell{Kind: KindFloat, Text: text}
	default:
		return Cell{Kind: KindString, Text: text}
	}
}

// IsLetters reports whether s is a non-empty run of ASCII letters.
func IsLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return s != ""
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isDecimal(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	return ok && IsDigits(whole) && IsDigits(frac)
}

// Schema metadata keys recording the table layout in columnar outputs.
const (
	MetadataHeader = "randcsv.header"
	MetadataIndex  = "randcsv.index"
)

// TableReader loads a table previously written by a TableWriter.
type TableReader interface {
	// Read reads the whole table.
	Read(ctx context.Context) (*Table, error)

	// Close closes the reader and releases resources.
	Close() error
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Type is the input format (csv, parquet, arrow, json).
	Type string

	// Path is the file to read.
	Path string

	// Header marks the first row as column labels. Columnar formats
	// record this themselves and only fall back to it.
	Header bool

	// Index marks the first column as a row index.
	Index bool

	// BatchSize is the number of rows decoded at a time, where the
	// format supports it.
	BatchSize int64
}
