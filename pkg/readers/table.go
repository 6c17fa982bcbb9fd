package readers

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// tableAssembler collects decoded rows into a core.Table.
type tableAssembler struct {
	header bool
	index  bool
	labels []string
	rows   []core.Row
}

// newAssembler uses the layout recorded in the schema metadata, falling
// back to config when the file does not record it.
func newAssembler(config core.ReaderConfig, schema *arrow.Schema) *tableAssembler {
	labels := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		labels[i] = f.Name
	}
	md := schema.Metadata()
	return &tableAssembler{
		header: layoutFlag(md, core.MetadataHeader, config.Header),
		index:  layoutFlag(md, core.MetadataIndex, config.Index),
		labels: labels,
	}
}

func layoutFlag(md arrow.Metadata, key string, fallback bool) bool {
	i := md.FindKey(key)
	if i < 0 {
		return fallback
	}
	v, err := strconv.ParseBool(md.Values()[i])
	if err != nil {
		return fallback
	}
	return v
}

// cell classifies one decoded value. The index column holds labels.
func (a *tableAssembler) cell(col int, text string, null bool) core.Cell {
	if col == 0 && a.index {
		return core.LabelCell(text)
	}
	return core.ParseCell(text, null)
}

func (a *tableAssembler) appendRecord(rec arrow.Record) {
	cols := rec.Columns()
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make(core.Row, len(cols))
		for j, col := range cols {
			var text string
			null := col.IsNull(i)
			if !null {
				if s, ok := col.(*array.String); ok {
					text = s.Value(i)
				} else {
					text = col.ValueStr(i)
				}
			}
			row[j] = a.cell(j, text, null)
		}
		a.rows = append(a.rows, row)
	}
}

// table returns the assembled table, with the header row rebuilt from the
// column labels.
func (a *tableAssembler) table() *core.Table {
	rows := a.rows
	if a.header {
		header := make(core.Row, len(a.labels))
		for i, label := range a.labels {
			header[i] = core.LabelCell(label)
		}
		rows = append([]core.Row{header}, rows...)
	}
	return &core.Table{
		Rows:   rows,
		Cols:   len(a.labels),
		Header: a.header && len(rows) > 0,
		Index:  a.index,
	}
}

func openFile(config core.ReaderConfig, kind string) (*os.File, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("path is required for %s reader", kind)
	}
	f, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", kind, err)
	}
	return f, nil
}

func closeFile(f *os.File) error {
	if f == nil {
		return nil
	}
	err := f.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
