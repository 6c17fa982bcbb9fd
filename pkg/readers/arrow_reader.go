package readers

import (
	"context"
	"fmt"
	"os"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowReader implements a reader for Arrow IPC files.
type ArrowReader struct {
	config core.ReaderConfig
	file   *os.File
	alloc  memory.Allocator
}

// NewArrowReader creates a new Arrow IPC reader.
func NewArrowReader(config core.ReaderConfig) (core.TableReader, error) {
	f, err := openFile(config, "Arrow")
	if err != nil {
		return nil, err
	}
	return &ArrowReader{
		config: config,
		file:   f,
		alloc:  memory.NewGoAllocator(),
	}, nil
}

// Read reads every record batch of the file.
func (r *ArrowReader) Read(ctx context.Context) (*core.Table, error) {
	reader, err := ipc.NewFileReader(r.file, ipc.WithAllocator(r.alloc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}
	defer reader.Close()

	asm := newAssembler(r.config, reader.Schema())
	for i := 0; i < reader.NumRecords(); i++ {
		// Check if context is canceled
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := reader.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		asm.appendRecord(rec)
	}
	return asm.table(), nil
}

// Close closes the reader and releases resources.
func (r *ArrowReader) Close() error {
	err := closeFile(r.file)
	r.file = nil
	return err
}
