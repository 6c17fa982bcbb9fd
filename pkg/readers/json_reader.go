package readers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/TFMV/randcsv/pkg/core"
)

// JSONReader implements a reader for the JSON output: an array of rows,
// each an array of strings or nulls.
type JSONReader struct {
	config core.ReaderConfig
	file   *os.File
}

// NewJSONReader creates a new JSON reader.
func NewJSONReader(config core.ReaderConfig) (core.TableReader, error) {
	f, err := openFile(config, "JSON")
	if err != nil {
		return nil, err
	}
	return &JSONReader{config: config, file: f}, nil
}

// Read decodes the whole file.
func (r *JSONReader) Read(ctx context.Context) (*core.Table, error) {
	// Check if context is canceled
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var values [][]*string
	if err := json.NewDecoder(r.file).Decode(&values); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	table := &core.Table{
		Rows:   make([]core.Row, len(values)),
		Header: r.config.Header && len(values) > 0,
		Index:  r.config.Index,
	}
	if len(values) > 0 {
		table.Cols = len(values[0])
	}
	for i, vals := range values {
		if len(vals) != table.Cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(vals), table.Cols)
		}
		row := make(core.Row, len(vals))
		for j, v := range vals {
			switch {
			case i == 0 && table.Header, j == 0 && table.Index:
				row[j] = core.LabelCell(deref(v))
			default:
				row[j] = core.ParseCell(deref(v), v == nil)
			}
		}
		table.Rows[i] = row
	}
	return table, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Close closes the reader and releases resources.
func (r *JSONReader) Close() error {
	err := closeFile(r.file)
	r.file = nil
	return err
}
