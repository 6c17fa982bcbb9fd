package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	cases := map[string]DataType{
		"str":     String,
		"string":  String,
		"int":     Integer,
		"Integer": Integer,
		" float ": Float,
	}
	for name, want := range cases {
		got, err := ParseDataType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseDataType("bool")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "bool")
}

func TestParseDataTypesPreservesOrder(t *testing.T) {
	types, err := ParseDataTypes([]string{"float", "str", "int", "str"})
	require.NoError(t, err)
	assert.Equal(t, []DataType{Float, String, Integer, String}, types)

	_, err = ParseDataTypes([]string{"int", "date"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "str", String.String())
	assert.Equal(t, "int", Integer.String())
	assert.Equal(t, "float", Float.String())
	assert.False(t, DataType(7).Valid())
	for _, dt := range AllDataTypes {
		assert.True(t, dt.Valid())
	}
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "nan", NaNCell().String())
	assert.Equal(t, "", EmptyCell().String())
	assert.Equal(t, "3", LabelCell("3").String())
	assert.Equal(t, "abc", Cell{Kind: KindString, Text: "abc"}.String())

	assert.True(t, NaNCell().IsMissing())
	assert.True(t, EmptyCell().IsMissing())
	assert.False(t, LabelCell("0").IsMissing())
}

func TestTableAccessors(t *testing.T) {
	table := &Table{
		Cols:   2,
		Header: true,
		Rows: []Row{
			{LabelCell("0"), LabelCell("1")},
			{Cell{Kind: KindInteger, Text: "1234"}, NaNCell()},
			{EmptyCell(), Cell{Kind: KindFloat, Text: "0.25"}},
		},
	}

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, []string{"0", "1"}, table.Labels())
	assert.Len(t, table.DataRows(), 2)
	assert.Equal(t, [][]string{
		{"0", "1"},
		{"1234", "nan"},
		{"", "0.25"},
	}, table.Strings())

	table.Header = false
	assert.Len(t, table.DataRows(), 3)
	assert.Equal(t, []string{"0", "1"}, table.Labels())
}

func TestColumnLabels(t *testing.T) {
	assert.Empty(t, ColumnLabels(0))
	assert.Equal(t, []string{"0", "1", "2"}, ColumnLabels(3))
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		text string
		null bool
		want CellKind
	}{
		{"", false, KindEmpty},
		{"abc", true, KindEmpty},
		{"nan", false, KindNaN},
		{"abXY", false, KindString},
		{"1234", false, KindInteger},
		{"0", false, KindInteger},
		{"0.125", false, KindFloat},
		{"1.", false, KindString},
		{"a1", false, KindString},
		{"-12", false, KindString},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cell := ParseCell(tt.text, tt.null)
			assert.Equal(t, tt.want, cell.Kind)
			if !tt.null {
				assert.Equal(t, tt.text, cell.String())
			}
		})
	}
}

func TestIsLettersAndDigits(t *testing.T) {
	assert.True(t, IsLetters("abXY"))
	assert.False(t, IsLetters("ab1"))
	assert.False(t, IsLetters("a@"))
	assert.False(t, IsLetters(""))

	assert.True(t, IsDigits("0123"))
	assert.False(t, IsDigits("12a"))
	assert.False(t, IsDigits(""))
}
