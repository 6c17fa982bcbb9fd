package readers

import (
	"bufio"
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CSVReader implements a reader for CSV files, decoding through Arrow.
// Every column is read as text so values keep their exact formatting.
type CSVReader struct {
	config    core.ReaderConfig
	file      *os.File
	alloc     memory.Allocator
	chunkSize int
}

// NewCSVReader creates a new CSV reader.
func NewCSVReader(config core.ReaderConfig) (core.TableReader, error) {
	file, err := openFile(config, "CSV")
	if err != nil {
		return nil, err
	}

	// Set default chunk size if not specified
	chunkSize := config.BatchSize
	if chunkSize <= 0 {
		chunkSize = 10000 // Default chunk size
	}

	return &CSVReader{
		config:    config,
		file:      file,
		alloc:     memory.NewGoAllocator(),
		chunkSize: int(chunkSize),
	}, nil
}

// Read reads the whole file. Empty fields are Empty cells.
func (r *CSVReader) Read(ctx context.Context) (*core.Table, error) {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	br := bufio.NewReader(r.file)
	first, leading, err := firstLine(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if first == "" {
		return r.blankTable(leading), nil
	}

	// The Arrow reader needs the column count up front.
	fields, err := stdcsv.NewReader(strings.NewReader(first)).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	names := core.ColumnLabels(len(fields))
	if r.config.Header {
		names = fields
	}
	schemaFields := make([]arrow.Field, len(names))
	for i, name := range names {
		schemaFields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(schemaFields, nil)

	var src io.Reader = io.MultiReader(strings.NewReader(strings.Repeat("\n", leading)+first), br)
	if len(fields) == 1 {
		// A blank line in a one-column file is a row with one empty field.
		src = &blankLineReader{br: bufio.NewReader(src)}
	}
	reader := csv.NewReader(
		src,
		schema,
		csv.WithChunk(r.chunkSize),
		csv.WithHeader(r.config.Header),
		csv.WithNullReader(true, ""), // Empty string is treated as null
		csv.WithAllocator(r.alloc),
	)
	defer reader.Release()

	asm := newAssembler(r.config, schema)
	for reader.Next() {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		asm.appendRecord(reader.Record())
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return asm.table(), nil
}

// firstLine returns the first non-blank line and the number of blank lines
// before it. first is empty when the file has no such line.
func firstLine(br *bufio.Reader) (first string, leading int, err error) {
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", 0, err
		}
		if line == "" {
			return "", leading, nil
		}
		if strings.TrimRight(line, "\r\n") != "" {
			return line, leading, nil
		}
		leading++
		if err != nil {
			return "", leading, nil
		}
	}
}

// blankTable is a file of n blank lines: a table with no columns.
func (r *CSVReader) blankTable(n int) *core.Table {
	if n == 0 {
		return &core.Table{Index: r.config.Index}
	}
	rows := make([]core.Row, n)
	for i := range rows {
		rows[i] = core.Row{}
	}
	return &core.Table{Rows: rows, Header: r.config.Header, Index: r.config.Index}
}

// blankLineReader rewrites blank lines as `""` so CSV decoding keeps them.
type blankLineReader struct {
	br      *bufio.Reader
	pending []byte
	err     error
}

func (b *blankLineReader) Read(p []byte) (int, error) {
	for len(b.pending) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		line, err := b.br.ReadBytes('\n')
		b.err = err
		if len(line) > 0 && len(bytes.TrimRight(line, "\r\n")) == 0 {
			line = append([]byte(`""`), line...)
		}
		b.pending = line
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

// Close closes the reader and releases resources.
func (r *CSVReader) Close() error {
	err := closeFile(r.file)
	r.file = nil
	return err
}
