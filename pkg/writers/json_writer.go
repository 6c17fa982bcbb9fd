package writers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TFMV/randcsv/pkg/core"
)

// JSONWriter implements a writer for JSON files. The output is an array of
// rows, each an array of strings with null for Empty cells. The header row,
// when present, is the first element.
type JSONWriter struct {
	sink *sink
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(config core.WriterConfig) (core.TableWriter, error) {
	s, err := openSink(config, "JSON")
	if err != nil {
		return nil, err
	}
	return &JSONWriter{sink: s}, nil
}

// Write writes the table.
func (w *JSONWriter) Write(ctx context.Context, table *core.Table) error {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := checkTable(table); err != nil {
		return err
	}

	if err := w.write(table); err != nil {
		w.sink.abort()
		return err
	}
	return nil
}

func (w *JSONWriter) write(table *core.Table) error {
	// Write opening bracket for array
	if _, err := fmt.Fprint(w.sink.w, "["); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]*string, len(row))
		for j, cell := range row {
			if cell.Kind == core.KindEmpty {
				continue
			}
			text := cell.String()
			values[j] = &text
		}

		sep := ",\n  "
		if i == 0 {
			sep = "\n  "
		}
		if _, err := fmt.Fprint(w.sink.w, sep); err != nil {
			return fmt.Errorf("failed to write separator: %w", err)
		}

		data, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := w.sink.w.Write(data); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	// Write closing bracket for array
	if _, err := fmt.Fprint(w.sink.w, "\n]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}
	return nil
}

// Close closes the writer and flushes any pending data.
func (w *JSONWriter) Close() error {
	return w.sink.Close()
}
