package writers

import (
	"context"
	"fmt"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowWriter implements a writer for Arrow IPC files.
type ArrowWriter struct {
	sink  *sink
	alloc memory.Allocator
}

// NewArrowWriter creates a new Arrow IPC writer.
func NewArrowWriter(config core.WriterConfig) (core.TableWriter, error) {
	s, err := openSink(config, "Arrow")
	if err != nil {
		return nil, err
	}
	return &ArrowWriter{
		sink:  s,
		alloc: memory.NewGoAllocator(),
	}, nil
}

// Write writes the table as one record batch.
func (w *ArrowWriter) Write(ctx context.Context, table *core.Table) error {
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

	writer, err := ipc.NewFileWriter(w.sink.w, ipc.WithSchema(schema), ipc.WithAllocator(w.alloc))
	if err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		w.sink.abort()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		w.sink.abort()
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

// Close closes the writer and flushes any pending data.
func (w *ArrowWriter) Close() error {
	return w.sink.Close()
}
