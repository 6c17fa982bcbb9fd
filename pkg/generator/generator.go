package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
)

// Generator builds tables from a GenerationConfig.
type Generator struct {
	// Logger for structured logging.
	Logger *zap.Logger
}

// NewGenerator constructs a Generator. A nil logger disables logging.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Logger: logger}
}

// Generate validates cfg and builds the complete table. The result has
// cfg.Rows rows of cfg.Cols cells each, in index order. Any row failure
// fails the whole call and no table is returned.
func Generate(ctx context.Context, cfg *config.GenerationConfig) (*core.Table, error) {
	return NewGenerator(nil).Generate(ctx, cfg)
}

// Workers returns the size of the worker pool Generate uses for cfg:
// zero for sequential generation, otherwise min(MaxWorkers, Rows).
func Workers(cfg *config.GenerationConfig) int {
	if cfg.MaxWorkers < 2 {
		return 0
	}
	return min(cfg.MaxWorkers, cfg.Rows)
}

// Generate validates cfg and builds the complete table.
func (g *Generator) Generate(ctx context.Context, cfg *config.GenerationConfig) (*core.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := NewSelector(cfg.NaNFreq, cfg.EmptyFreq)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	workers := Workers(cfg)
	strategy := "sequential"
	if workers > 0 {
		strategy = "parallel"
	}

	start := time.Now()
	g.Logger.Info("Starting generation",
		zap.Int("rows", cfg.Rows),
		zap.Int("cols", cfg.Cols),
		zap.String("strategy", strategy),
		zap.Int("workers", workers),
		zap.Uint64("seed", seed))

	rows := make([]core.Row, cfg.Rows)
	if workers > 0 {
		err = g.generateParallel(ctx, cfg, sel, seed, workers, rows)
	} else {
		err = g.generateSequential(ctx, cfg, sel, seed, rows)
	}
	if err != nil {
		g.Logger.Error("Generation failed", zap.Error(err))
		return nil, err
	}

	g.Logger.Info("Generation completed",
		zap.Int("rows", cfg.Rows),
		zap.Duration("duration", time.Since(start)))

	return &core.Table{
		Rows:   rows,
		Cols:   cfg.Cols,
		Header: cfg.TitleRow && cfg.Rows > 0,
		Index:  cfg.IndexCol,
		Seed:   seed,
	}, nil
}

// rowStream returns the random stream of one row. Streams depend only on
// the seed and the row index, so the table is the same for a given seed
// whatever the worker count.
func rowStream(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}

func (g *Generator) generateSequential(ctx context.Context, cfg *config.GenerationConfig, sel *Selector, seed uint64, rows []core.Row) error {
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := BuildRow(rowStream(seed, i), i, cfg, sel)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return nil
}

// generateParallel runs a fixed pool of workers over index-tagged jobs.
// Each worker stores its row at the row's own index, so no two workers
// write the same element and no locking is needed.
func (g *Generator) generateParallel(ctx context.Context, cfg *config.GenerationConfig, sel *Selector, seed uint64, workers int, rows []core.Row) error {
	eg, egCtx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	eg.Go(func() error {
		defer close(jobs)
		for i := range rows {
			if err := egCtx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- i:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for i := range jobs {
				row, err := BuildRow(rowStream(seed, i), i, cfg, sel)
				if err != nil {
					return fmt.Errorf("row %d: %w", i, err)
				}
				rows[i] = row
			}
			return nil
		})
	}

	return eg.Wait()
}
