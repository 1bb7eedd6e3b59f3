package ledgers

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// Registry manages the registered ledger loaders
type Registry struct {
	loaders map[string]Loader
	byExt   map[string]Loader
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewRegistry creates an empty loader registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		loaders: make(map[string]Loader),
		byExt:   make(map[string]Loader),
		logger:  logger,
	}
}

// NewDefaultRegistry registers the CSV, TSV and XLSX loaders
func NewDefaultRegistry(opts Options, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, l := range []Loader{NewCSVLoader(opts), NewTSVLoader(opts), NewXLSXLoader(opts)} {
		// Names and extensions are distinct, so this cannot fail.
		_ = r.Register(l)
	}
	return r
}

// Register adds a loader. Names and extensions must not already be taken.
func (r *Registry) Register(loader Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := loader.Name()
	if _, exists := r.loaders[name]; exists {
		return fmt.Errorf("loader %s already registered", name)
	}
	for _, ext := range loader.Extensions() {
		if other, exists := r.byExt[strings.ToLower(ext)]; exists {
			return fmt.Errorf("extension %s already handled by %s", ext, other.Name())
		}
	}

	r.loaders[name] = loader
	for _, ext := range loader.Extensions() {
		r.byExt[strings.ToLower(ext)] = loader
	}

	r.logger.Debug("registered ledger loader",
		slog.String("loader", name),
		slog.String("extensions", strings.Join(loader.Extensions(), ",")),
	)
	return nil
}

// Get returns a loader by name
func (r *Registry) Get(name string) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, exists := r.loaders[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return loader, nil
}

// ForPath returns the loader registered for the file extension of path
func (r *Registry) ForPath(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	defer r.mu.RUnlock()

	loader, exists := r.byExt[ext]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
	return loader, nil
}

// Names returns all registered loader names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses r with the loader called name
func (r *Registry) Load(name string, src io.Reader) (reconciler.Ledger, error) {
	loader, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return loader.Load(src)
}

// LoadFile opens path and parses it with the loader for its extension
func (r *Registry) LoadFile(path string) (reconciler.Ledger, error) {
	loader, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	ledger, err := loader.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	r.logger.Debug("loaded ledger",
		slog.String("path", path),
		slog.String("loader", loader.Name()),
		slog.Int("rows", len(ledger)),
	)
	return ledger, nil
}

// FormatForFilename returns the loader name for an uploaded file name.
// Unknown or missing extensions fall back to csv.
func (r *Registry) FormatForFilename(name string) string {
	if loader, err := r.ForPath(name); err == nil {
		return loader.Name()
	}
	return "csv"
}
