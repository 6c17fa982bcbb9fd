// Package readers provides implementations of table readers for the output
// formats, used to load generated files back for inspection.
package readers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TFMV/randcsv/pkg/core"
)

// Factory creates a reader based on the given configuration.
type Factory struct {
	// registered readers by type
	readers map[string]Creator
}

// Creator is a function that creates a reader from a configuration.
type Creator func(config core.ReaderConfig) (core.TableReader, error)

// NewFactory creates a new reader factory.
func NewFactory() *Factory {
	return &Factory{
		readers: make(map[string]Creator),
	}
}

// Register registers a creator for a reader type.
func (f *Factory) Register(typ string, creator Creator) {
	f.readers[typ] = creator
}

// Create creates a reader based on the given configuration. An empty type
// is detected from the path extension.
func (f *Factory) Create(config core.ReaderConfig) (core.TableReader, error) {
	if config.Type == "" {
		config.Type = DetectType(config.Path)
	}
	creator, ok := f.readers[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported reader type: %s", core.ErrInvalidArgument, config.Type)
	}
	return creator(config)
}

// Types returns the registered reader types in sorted order.
func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.readers))
	for typ := range f.readers {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// DetectType returns the format named by the extension of path, or csv.
func DetectType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "parquet"
	case ".arrow", ".ipc", ".feather":
		return "arrow"
	case ".json":
		return "json"
	default:
		return "csv"
	}
}

// DefaultFactory is the default reader factory with built-in reader types.
var DefaultFactory = NewFactory()

// init registers built-in reader types.
func init() {
	DefaultFactory.Register("parquet", NewParquetReader)
	DefaultFactory.Register("arrow", NewArrowReader)
	DefaultFactory.Register("csv", NewCSVReader)
	DefaultFactory.Register("json", NewJSONReader)
}
