package readers

import (
	"context"
	"fmt"
	"os"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetReader implements a reader for Parquet files.
type ParquetReader struct {
	config    core.ReaderConfig
	file      *os.File
	alloc     memory.Allocator
	batchSize int64
}

// NewParquetReader creates a new Parquet reader.
func NewParquetReader(config core.ReaderConfig) (core.TableReader, error) {
	f, err := openFile(config, "Parquet")
	if err != nil {
		return nil, err
	}

	// Set default batch size if not specified
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 10000 // Default batch size
	}

	return &ParquetReader{
		config:    config,
		file:      f,
		alloc:     memory.NewGoAllocator(),
		batchSize: batchSize,
	}, nil
}

// Read reads every row group of the file.
func (r *ParquetReader) Read(ctx context.Context) (*core.Table, error) {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Create parquet file reader - file is a ReaderAtSeeker
	parquetReader, err := file.NewParquetReader(r.file)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}
	defer parquetReader.Close()

	arrowProps := pqarrow.ArrowReadProperties{BatchSize: r.batchSize}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, arrowProps, r.alloc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	asm := newAssembler(r.config, schema)

	recordReader, err := arrowReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}
	defer recordReader.Release()

	for recordReader.Next() {
		asm.appendRecord(recordReader.Record())
	}
	if err := recordReader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read Parquet records: %w", err)
	}
	return asm.table(), nil
}

// Close closes the reader and releases resources.
func (r *ParquetReader) Close() error {
	err := closeFile(r.file)
	r.file = nil
	return err
}
