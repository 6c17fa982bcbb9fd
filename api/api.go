package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/generator"
	"github.com/TFMV/randcsv/pkg/writers"
	"github.com/TFMV/randcsv/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Request bounds of a single /generate request.
const (
	// DefaultMaxCells bounds rows*cols.
	DefaultMaxCells = 10_000_000
	// DefaultMaxBytes bounds rows*cols*value_length.
	DefaultMaxBytes = 256 << 20
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Port     string
	Prefork  bool
	MaxCells int
	MaxBytes int
	Logger   *zap.Logger
}

// Server holds the Fiber app instance
type Server struct {
	app      *fiber.App
	port     string
	maxCells int
	maxBytes int
	log      *zap.Logger
}

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	"csv":     "text/csv; charset=utf-8",
	"json":    fiber.MIMEApplicationJSON,
	"arrow":   "application/vnd.apache.arrow.file",
	"parquet": "application/vnd.apache.parquet",
}

// NewServer initializes a new Fiber instance.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "3000"
	}
	if opts.MaxCells <= 0 {
		opts.MaxCells = DefaultMaxCells
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:           10 * time.Second,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		Prefork:               opts.Prefork,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{app: app, port: opts.Port, maxCells: opts.MaxCells, maxBytes: opts.MaxBytes, log: opts.Logger}

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "randcsv API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/generate", s.handleGenerate)

	return s
}

// GetApp returns the underlying Fiber app.
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("randcsv API is running", zap.String("port", s.port))
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the server, waiting for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// generateQuery holds the /generate parameters. Fields keep their
// defaults when the parameter is absent.
type generateQuery struct {
	Rows        int     `query:"rows"`
	Cols        int     `query:"cols"`
	DataTypes   string  `query:"data_types"`
	NaNFreq     float64 `query:"nan_freq"`
	EmptyFreq   float64 `query:"empty_freq"`
	IndexCol    bool    `query:"index_col"`
	TitleRow    bool    `query:"title_row"`
	ValueLength int     `query:"value_length"`
	MaxProcs    int     `query:"max_procs"`
	Seed        uint64  `query:"seed"`
	Format      string  `query:"format"`
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	cfg, format, err := s.parseGenerate(c)
	if err != nil {
		return s.fail(c, err)
	}

	table, err := generator.NewGenerator(s.log).Generate(c.UserContext(), cfg)
	if err != nil {
		return s.fail(c, err)
	}

	var buf bytes.Buffer
	w, err := writers.DefaultFactory.Create(core.WriterConfig{Type: format, Sink: &buf})
	if err != nil {
		return s.fail(c, err)
	}
	if err := w.Write(c.UserContext(), table); err != nil {
		_ = w.Close()
		return s.fail(c, err)
	}
	if err := w.Close(); err != nil {
		return s.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, contentTypes[format])
	return c.Send(buf.Bytes())
}

func (s *Server) parseGenerate(c *fiber.Ctx) (*config.GenerationConfig, string, error) {
	for _, key := range []string{config.KeyRows, config.KeyCols} {
		if c.Query(key) == "" {
			return nil, "", fmt.Errorf("%w: %s is required", core.ErrInvalidArgument, key)
		}
	}

	d := config.Default()
	q := generateQuery{
		DataTypes:   core.Integer.String(),
		ValueLength: d.Generation.ValueLength,
		MaxProcs:    d.Generation.MaxWorkers,
		Format:      d.Output.Format,
	}
	if err := c.QueryParser(&q); err != nil {
		return nil, "", fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}

	types, err := core.ParseDataTypes(strings.Split(q.DataTypes, ","))
	if err != nil {
		return nil, "", err
	}

	cfg := &config.GenerationConfig{
		Rows:        q.Rows,
		Cols:        q.Cols,
		ValueLength: q.ValueLength,
		DataTypes:   types,
		NaNFreq:     q.NaNFreq,
		EmptyFreq:   q.EmptyFreq,
		IndexCol:    q.IndexCol,
		TitleRow:    q.TitleRow,
		MaxWorkers:  q.MaxProcs,
		Seed:        q.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.checkSize(cfg); err != nil {
		return nil, "", err
	}

	format := strings.ToLower(q.Format)
	if _, ok := contentTypes[format]; !ok {
		return nil, "", fmt.Errorf("%w: unsupported format %q", core.ErrInvalidArgument, q.Format)
	}
	return cfg, format, nil
}

// checkSize bounds the cells and bytes a request may generate. The
// comparisons divide so that large parameters cannot overflow.
func (s *Server) checkSize(cfg *config.GenerationConfig) error {
	if cfg.Cols > 0 && cfg.Rows > s.maxCells/cfg.Cols {
		return fmt.Errorf("%w: rows*cols must be <= %d", core.ErrInvalidArgument, s.maxCells)
	}
	cells := max(cfg.Rows*cfg.Cols, 1)
	if cfg.ValueLength > s.maxBytes/cells {
		return fmt.Errorf("%w: rows*cols*value_length must be <= %d", core.ErrInvalidArgument, s.maxBytes)
	}
	return nil
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, core.ErrInvalidArgument) {
		status = fiber.StatusBadRequest
	} else {
		s.log.Error("Generate request failed", zap.Error(err))
	}
	return c.Status(status).SendString(err.Error())
}
