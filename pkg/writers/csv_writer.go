package writers

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CSVWriter implements a writer for comma separated files. The header row,
// when the table has one, is written from the Arrow schema field names.
type CSVWriter struct {
	sink  *sink
	alloc memory.Allocator
}

// NewCSVWriter creates a new CSV writer.
func NewCSVWriter(config core.WriterConfig) (core.TableWriter, error) {
	s, err := openSink(config, "CSV")
	if err != nil {
		return nil, err
	}
	return &CSVWriter{
		sink:  s,
		alloc: memory.NewGoAllocator(),
	}, nil
}

// Write writes the table. NaN cells are written as "nan" and Empty cells
// as empty fields. In a one-column table an Empty cell is written as `""`
// so that the row is not a blank line.
func (w *CSVWriter) Write(ctx context.Context, table *core.Table) error {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := checkTable(table); err != nil {
		return err
	}

	schema := tableSchema(table)
	record := tableRecord(w.alloc, schema, table)
	defer record.Release()

	var out io.Writer = w.sink.w
	if table.Cols == 1 {
		out = &loneFieldWriter{w: out, lineStart: true}
	}
	writer := csv.NewWriter(out, schema,
		csv.WithComma(','),
		csv.WithHeader(table.Header),
		csv.WithNullWriter(""),
	)
	if err := writer.Write(record); err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := writer.Flush(); err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// loneFieldWriter quotes the empty field of blank lines written through it.
type loneFieldWriter struct {
	w         io.Writer
	lineStart bool
}

func (l *loneFieldWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			n, err := l.w.Write(p)
			written += n
			l.lineStart = false
			return written, err
		}
		if i == 0 && l.lineStart {
			if _, err := io.WriteString(l.w, `""`); err != nil {
				return written, err
			}
		}
		n, err := l.w.Write(p[:i+1])
		written += n
		if err != nil {
			return written, err
		}
		l.lineStart = true
		p = p[i+1:]
	}
	return written, nil
}

// Close closes the writer and flushes any pending data.
func (w *CSVWriter) Close() error {
	return w.sink.Close()
}
