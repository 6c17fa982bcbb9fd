// Package validation checks a table against the configuration it was
// generated from.
package validation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/metrics"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/generator"
)

// ErrValidationFailed reports a table that does not match its configuration.
var ErrValidationFailed = errors.New("validation failed")

// Defaults for a Validator.
const (
	DefaultMaxIssues  = 10
	DefaultDeviations = 6.0
)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name   string   `json:"name"`
	Status bool     `json:"status"`
	Issues []string `json:"issues,omitempty"`
	// Failures counts every failure, including those not listed in Issues.
	Failures int `json:"failures"`
}

// Result aggregates every check of one validation run.
type Result struct {
	Checks      []CheckResult           `json:"checks"`
	Cells       metrics.CellCounts      `json:"cells"`
	Frequencies metrics.FrequencyResult `json:"frequencies"`
	Duration    time.Duration           `json:"duration"`
	Passed      bool                    `json:"passed"`
}

// Validator manages the configuration and validation logic.
type Validator struct {
	Config *config.GenerationConfig

	// MaxIssues caps the issues listed per check.
	MaxIssues int

	// Deviations is the number of standard deviations a realized
	// missing-value frequency may stray from its target.
	Deviations float64

	// Logger for structured logging.
	Logger *zap.Logger
}

// NewValidator constructs a new Validator instance.
func NewValidator(cfg *config.GenerationConfig, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		Config:     cfg,
		MaxIssues:  DefaultMaxIssues,
		Deviations: DefaultDeviations,
		Logger:     logger,
	}
}

// checker accumulates the failures of one check.
type checker struct {
	result CheckResult
	max    int
}

func newChecker(name string, max int) *checker {
	return &checker{result: CheckResult{Name: name}, max: max}
}

func (c *checker) failf(format string, a ...any) {
	c.result.Failures++
	if len(c.result.Issues) < c.max {
		c.result.Issues = append(c.result.Issues, fmt.Sprintf(format, a...))
	}
}

func (c *checker) done() CheckResult {
	c.result.Status = c.result.Failures == 0
	return c.result
}

// Validate runs all checks concurrently and returns the combined result.
// The error is non-nil only when validation could not run.
func (v *Validator) Validate(ctx context.Context, table *core.Table) (Result, error) {
	if table == nil {
		return Result{}, fmt.Errorf("%w: nil table", core.ErrInvalidState)
	}
	if err := v.Config.Validate(); err != nil {
		return Result{}, err
	}

	startTime := time.Now()
	v.Logger.Info("Starting validation",
		zap.Int("rows", table.NumRows()),
		zap.Int("cols", table.Cols))

	checks := []func(context.Context, *core.Table) (CheckResult, error){
		v.checkShape,
		v.checkHeader,
		v.checkIndex,
		v.checkValues,
		v.checkFrequencies,
	}

	var (
		wg      sync.WaitGroup
		errCh   = make(chan error, len(checks))
		results = make([]CheckResult, len(checks))
	)
	wg.Add(len(checks))
	for i, check := range checks {
		go func() {
			defer wg.Done()
			res, err := check(ctx, table)
			if err != nil {
				errCh <- err
				return
			}
			results[i] = res
			v.Logger.Debug("Check completed", zap.String("check", res.Name), zap.Bool("status", res.Status))
		}()
	}
	wg.Wait()
	close(errCh)

	// Check for any error from the goroutines.
	for err := range errCh {
		v.Logger.Error("Validation error", zap.Error(err))
		return Result{}, err
	}

	counts := metrics.CountCells(table)
	result := Result{
		Checks:      results,
		Cells:       counts,
		Frequencies: v.frequencies(counts),
		Duration:    time.Since(startTime),
		Passed:      true,
	}
	for _, res := range results {
		result.Passed = result.Passed && res.Status
	}

	v.Logger.Info("Validation complete",
		zap.Bool("passed", result.Passed),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// checkShape checks the row count and the width of every row.
func (v *Validator) checkShape(_ context.Context, table *core.Table) (CheckResult, error) {
	c := newChecker("shape", v.MaxIssues)
	if got := table.NumRows(); got != v.Config.Rows {
		c.failf("table has %d rows, want %d", got, v.Config.Rows)
	}
	if table.Cols != v.Config.Cols {
		c.failf("table has %d columns, want %d", table.Cols, v.Config.Cols)
	}
	for i, row := range table.Rows {
		if len(row) != v.Config.Cols {
			c.failf("row %d has %d cells, want %d", i, len(row), v.Config.Cols)
		}
	}
	return c.done(), nil
}

// checkHeader checks the title row labels.
func (v *Validator) checkHeader(_ context.Context, table *core.Table) (CheckResult, error) {
	c := newChecker("header", v.MaxIssues)
	wantHeader := v.Config.TitleRow && v.Config.Rows > 0
	if table.Header != wantHeader {
		c.failf("header row present: %t, want %t", table.Header, wantHeader)
		return c.done(), nil
	}
	if !wantHeader || len(table.Rows) == 0 {
		return c.done(), nil
	}
	for j, cell := range table.Rows[0] {
		if want := strconv.Itoa(j); cell.Text != want {
			c.failf("header label %d is %q, want %q", j, cell.Text, want)
		}
	}
	return c.done(), nil
}

// checkIndex checks that the first column holds the row index.
func (v *Validator) checkIndex(_ context.Context, table *core.Table) (CheckResult, error) {
	c := newChecker("index", v.MaxIssues)
	if !v.Config.IndexCol || v.Config.Cols == 0 {
		return c.done(), nil
	}
	start := 0
	if table.Header {
		start = 1
	}
	for i := start; i < len(table.Rows); i++ {
		row := table.Rows[i]
		if len(row) == 0 {
			continue
		}
		if want := strconv.Itoa(i); row[0].Text != want {
			c.failf("row %d has index %q, want %q", i, row[0].Text, want)
		}
	}
	return c.done(), nil
}

// checkValues checks every regular cell against the configured data types
// and value length.
func (v *Validator) checkValues(ctx context.Context, table *core.Table) (CheckResult, error) {
	c := newChecker("values", v.MaxIssues)
	start := 0
	if table.Header {
		start = 1
	}
	for i := start; i < len(table.Rows); i++ {
		if (i-start)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return CheckResult{}, err
			}
		}
		for j, cell := range table.Rows[i] {
			if cell.Kind == core.KindLabel || cell.IsMissing() {
				continue
			}
			if !v.matchesAny(cell.Text) {
				c.failf("row %d col %d: %q is not a %d-character %s value",
					i, j, cell.Text, v.Config.ValueLength, typeNames(v.Config.DataTypes))
			}
		}
	}
	return c.done(), nil
}

func (v *Validator) matchesAny(text string) bool {
	for _, dt := range v.Config.DataTypes {
		if Matches(dt, text, v.Config.ValueLength) {
			return true
		}
	}
	return false
}

// checkFrequencies compares the realized NaN and empty shares with their
// targets, allowing Deviations binomial standard deviations.
func (v *Validator) checkFrequencies(_ context.Context, table *core.Table) (CheckResult, error) {
	c := newChecker("frequencies", v.MaxIssues)
	counts := metrics.CountCells(table)
	if counts.Total == 0 {
		return c.done(), nil
	}
	n := float64(counts.Total)
	for _, f := range []struct {
		name   string
		target float64
		count  int64
	}{
		{"nan", v.Config.NaNFreq, counts.NaN},
		{"empty", v.Config.EmptyFreq, counts.Empty},
	} {
		realized := float64(f.count) / n
		allowed := v.Deviations * math.Sqrt(f.target*(1-f.target)/n)
		if math.Abs(realized-f.target) > allowed+1e-12 {
			c.failf("%s frequency is %.4f over %d cells, want %.4f ± %.4f",
				f.name, realized, counts.Total, f.target, allowed)
		}
	}
	return c.done(), nil
}

func (v *Validator) frequencies(counts metrics.CellCounts) metrics.FrequencyResult {
	fr := metrics.FrequencyResult{
		TargetNaN:   v.Config.NaNFreq,
		TargetEmpty: v.Config.EmptyFreq,
	}
	if counts.Total > 0 {
		fr.RealizedNaN = float64(counts.NaN) / float64(counts.Total)
		fr.RealizedEmpty = float64(counts.Empty) / float64(counts.Total)
	}
	return fr
}

// Matches reports whether text is a value the generator can produce for
// data type dt and length n.
func Matches(dt core.DataType, text string, n int) bool {
	switch dt {
	case core.String:
		return len(text) == n && core.IsLetters(text)
	case core.Integer:
		return len(text) == n && core.IsDigits(text) && text[0] != '0'
	case core.Float:
		k := generator.FractionalDigits(n)
		if k == 0 {
			return text == "0" || text == "1"
		}
		if len(text) != k+2 || text[1] != '.' || !core.IsDigits(text[2:]) {
			return false
		}
		switch text[0] {
		case '0':
			return true
		case '1':
			// Rounding up from just below 1.
			return allZeros(text[2:])
		}
		return false
	default:
		return false
	}
}

func typeNames(types []core.DataType) string {
	s := ""
	for i, dt := range types {
		if i > 0 {
			s += "|"
		}
		s += dt.String()
	}
	return s
}

func allZeros(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}
