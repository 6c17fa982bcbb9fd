package writers

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intCell(s string) core.Cell { return core.Cell{Kind: core.KindInteger, Text: s} }
func strCell(s string) core.Cell { return core.Cell{Kind: core.KindString, Text: s} }

// sampleTable has a header, an index column and both missing kinds.
func sampleTable() *core.Table {
	return &core.Table{
		Cols:   3,
		Header: true,
		Index:  true,
		Rows: []core.Row{
			{core.LabelCell("0"), core.LabelCell("1"), core.LabelCell("2")},
			{core.LabelCell("1"), core.NaNCell(), core.EmptyCell()},
			{core.LabelCell("2"), intCell("1234"), strCell("abCD")},
		},
	}
}

func writeTo(t *testing.T, typ string, table *core.Table) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := DefaultFactory.Create(core.WriterConfig{Type: typ, Sink: &buf})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), table))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFactory(t *testing.T) {
	assert.Equal(t, []string{"arrow", "csv", "json", "parquet"}, DefaultFactory.Types())

	_, err := DefaultFactory.Create(core.WriterConfig{Type: "xlsx", Path: "out.xlsx"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = DefaultFactory.Create(core.WriterConfig{Type: "csv"})
	assert.Error(t, err, "path is required without a sink")
}

func TestCSVWriter(t *testing.T) {
	out := writeTo(t, "csv", sampleTable())
	assert.Equal(t, "0,1,2\n1,nan,\n2,1234,abCD\n", string(out))
}

func TestCSVWriterWithoutHeader(t *testing.T) {
	table := &core.Table{
		Cols: 2,
		Rows: []core.Row{
			{intCell("11"), core.EmptyCell()},
			{core.NaNCell(), intCell("22")},
		},
	}
	out := writeTo(t, "csv", table)
	assert.Equal(t, "11,\nnan,22\n", string(out))
}

func TestCSVWriterQuotesLoneEmptyField(t *testing.T) {
	table := &core.Table{
		Cols: 1,
		Rows: []core.Row{
			{core.EmptyCell()},
			{intCell("12")},
			{core.EmptyCell()},
			{core.NaNCell()},
			{core.EmptyCell()},
		},
	}
	out := writeTo(t, "csv", table)
	assert.Equal(t, "\"\"\n12\n\"\"\nnan\n\"\"\n", string(out))

	table.Header = true
	table.Rows = append([]core.Row{{core.LabelCell("0")}}, table.Rows...)
	out = writeTo(t, "csv", table)
	assert.Equal(t, "0\n\"\"\n12\n\"\"\nnan\n\"\"\n", string(out))
}

func TestCSVWriterHeaderOnly(t *testing.T) {
	table := &core.Table{
		Cols:   2,
		Header: true,
		Rows:   []core.Row{{core.LabelCell("0"), core.LabelCell("1")}},
	}
	out := writeTo(t, "csv", table)
	assert.Equal(t, "0,1\n", string(out))
}

func TestCSVWriterToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	w, err := NewCSVWriter(core.WriterConfig{Type: "csv", Path: path})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), sampleTable()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0,1,2\n1,nan,\n2,1234,abCD\n", string(data))
}

func TestWriterRejectsRaggedTable(t *testing.T) {
	table := sampleTable()
	table.Rows[2] = table.Rows[2][:2]

	for _, typ := range DefaultFactory.Types() {
		var buf bytes.Buffer
		w, err := DefaultFactory.Create(core.WriterConfig{Type: typ, Sink: &buf})
		require.NoError(t, err)
		err = w.Write(context.Background(), table)
		assert.ErrorIs(t, err, core.ErrInvalidState, typ)
	}
}

func TestWriterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	w, err := NewCSVWriter(core.WriterConfig{Sink: &buf})
	require.NoError(t, err)
	assert.ErrorIs(t, w.Write(ctx, sampleTable()), context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestJSONWriter(t *testing.T) {
	out := writeTo(t, "json", sampleTable())

	var rows [][]*string
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "0", *rows[0][0])
	assert.Equal(t, "nan", *rows[1][1])
	assert.Nil(t, rows[1][2])
	assert.Equal(t, "abCD", *rows[2][2])
}

func TestJSONWriterEmptyTable(t *testing.T) {
	out := writeTo(t, "json", &core.Table{})
	var rows [][]*string
	require.NoError(t, json.Unmarshal(out, &rows))
	assert.Empty(t, rows)
}

func TestParquetWriter(t *testing.T) {
	out := writeTo(t, "parquet", sampleTable())

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(out),
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	require.NoError(t, err)
	defer tbl.Release()

	assert.EqualValues(t, 2, tbl.NumRows(), "header becomes the schema")
	assert.EqualValues(t, 3, tbl.NumCols())
	assert.Equal(t, "1", tbl.Schema().Field(1).Name)

	col := tbl.Column(2).Data().Chunk(0).(*array.String)
	assert.True(t, col.IsNull(0))
	assert.Equal(t, "abCD", col.Value(1))
}

func TestParquetWriterNeedsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := NewParquetWriter(core.WriterConfig{Path: path})
	require.NoError(t, err)

	err = w.Write(context.Background(), &core.Table{Rows: []core.Row{{}, {}}})
	assert.Error(t, err)
	require.NoError(t, w.Close())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed output must not be left behind")
}

func TestArrowWriter(t *testing.T) {
	out := writeTo(t, "arrow", sampleTable())

	mem := memory.NewGoAllocator()
	reader, err := ipc.NewFileReader(bytes.NewReader(out), ipc.WithAllocator(mem))
	require.NoError(t, err)
	defer reader.Close()

	require.Equal(t, 1, reader.NumRecords())
	rec, err := reader.Record(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rec.NumRows())
	assert.EqualValues(t, 3, rec.NumCols())

	col := rec.Column(1).(*array.String)
	assert.Equal(t, "nan", col.Value(0))
	assert.Equal(t, "1234", col.Value(1))
}
