package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetWriter implements a writer for Parquet files.
type ParquetWriter struct {
	sink       *sink
	alloc      memory.Allocator
	properties pqarrow.ArrowWriterProperties
}

// NewParquetWriter creates a new Parquet writer.
func NewParquetWriter(config core.WriterConfig) (core.TableWriter, error) {
	s, err := openSink(config, "Parquet")
	if err != nil {
		return nil, err
	}

	alloc := memory.NewGoAllocator()
	return &ParquetWriter{
		sink:       s,
		alloc:      alloc,
		properties: pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(alloc), pqarrow.WithStoreSchema()),
	}, nil
}

// Write writes the table as a single row group. Column labels name the
// columns, whether or not the table has a header row.
func (w *ParquetWriter) Write(ctx context.Context, table *core.Table) error {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := checkTable(table); err != nil {
		return err
	}
	if table.Cols == 0 {
		w.sink.abort()
		return errors.New("parquet output needs at least one column")
	}

	schema := tableSchema(table)
	record := tableRecord(w.alloc, schema, table)
	defer record.Release()

	// Create Parquet writer with SNAPPY compression
	writeProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(false),
	)

	writer, err := pqarrow.NewFileWriter(schema, w.sink.w, writeProps, w.properties)
	if err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		w.sink.abort()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to close Parquet writer: %w", err)
	}
	return nil
}

// Close closes the writer and flushes any pending data.
func (w *ParquetWriter) Close() error {
	return w.sink.Close()
}
