package generator

import (
	"math/rand/v2"
	"strconv"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
)

// HeaderRow returns the column labels "0".."cols-1". The index column, when
// present, is labeled like any other column.
func HeaderRow(cols int) core.Row {
	row := make(core.Row, cols)
	for i := range row {
		row[i] = core.LabelCell(strconv.Itoa(i))
	}
	return row
}

// BuildRow builds the row at index. Row 0 is the header when TitleRow is
// set. Otherwise column 0 holds the row index when IndexCol is set and every
// other column is an independent draw from sel.
func BuildRow(r *rand.Rand, index int, cfg *config.GenerationConfig, sel *Selector) (core.Row, error) {
	if index == 0 && cfg.TitleRow {
		return HeaderRow(cfg.Cols), nil
	}

	row := make(core.Row, 0, cfg.Cols)
	if cfg.IndexCol && cfg.Cols > 0 {
		row = append(row, core.LabelCell(strconv.Itoa(index)))
	}
	for len(row) < cfg.Cols {
		cell, err := sel.Cell(r, cfg.DataTypes, cfg.ValueLength)
		if err != nil {
			return nil, err
		}
		row = append(row, cell)
	}
	return row, nil
}
