package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// tableSchema has one nullable UTF-8 field per column, named after the
// column labels. Cells mix data types, so every column is a string column.
func tableSchema(table *core.Table) *arrow.Schema {
	labels := table.Labels()
	fields := make([]arrow.Field, len(labels))
	for i, name := range labels {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	md := arrow.NewMetadata(
		[]string{core.MetadataHeader, core.MetadataIndex},
		[]string{strconv.FormatBool(table.Header), strconv.FormatBool(table.Index)},
	)
	return arrow.NewSchema(fields, &md)
}

// tableRecord converts the data rows of table into a single record.
// Empty-kind cells become nulls; every other cell keeps its text.
func tableRecord(mem memory.Allocator, schema *arrow.Schema, table *core.Table) arrow.Record {
	rows := table.DataRows()
	cols := make([]arrow.Array, schema.NumFields())
	for j := range cols {
		b := array.NewStringBuilder(mem)
		b.Reserve(len(rows))
		for _, row := range rows {
			cell := row[j]
			if cell.Kind == core.KindEmpty {
				b.AppendNull()
				continue
			}
			b.Append(cell.String())
		}
		cols[j] = b.NewArray()
		b.Release()
	}

	record := array.NewRecord(schema, cols, int64(len(rows)))
	for _, col := range cols {
		col.Release()
	}
	return record
}

// sink is the destination of one writer: either a caller-owned io.Writer
// or a file created from the configured path.
type sink struct {
	w    io.Writer
	file *os.File
}

func openSink(config core.WriterConfig, kind string) (*sink, error) {
	if config.Sink != nil {
		return &sink{w: config.Sink}, nil
	}
	if config.Path == "" {
		return nil, fmt.Errorf("path is required for %s writer", kind)
	}
	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", kind, err)
	}
	return &sink{w: file, file: file}, nil
}

// Close closes the file, if any. Some encoders close their sink themselves.
func (s *sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// abort closes and removes a partially written file.
func (s *sink) abort() {
	if s == nil || s.file == nil {
		return
	}
	_ = s.file.Close()
	_ = os.Remove(s.file.Name())
	s.file = nil
}

// checkTable verifies every row is as wide as the table.
func checkTable(table *core.Table) error {
	if table == nil {
		return fmt.Errorf("%w: nil table", core.ErrInvalidState)
	}
	width := len(table.Labels())
	for i, row := range table.Rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, want %d", core.ErrInvalidState, i, len(row), width)
		}
	}
	return nil
}
