// Package tracker defines the host plugin contract and the tape tracking
// modules that implement it.
//
// A Module receives camera frames one at a time and returns a Result with the
// located target, the serial message to send and, unless running headless,
// the composed output frame. Modules register themselves by name in init and
// are created with New.
package tracker

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/log"
)

// Module is a vision module loaded by the host.
//
// Process and ProcessNoUSB are called sequentially by the host; parameters
// may change concurrently between (or during) calls and take effect on the
// next frame.
type Module interface {
	// Name returns the registered module name.
	Name() string

	// Info describes the module and its current configuration.
	Info() Info

	// Params returns the module's tunable parameters.
	Params() *Params

	// Process runs the pipeline and composes an output frame.
	Process(ctx context.Context, f Frame) (*Result, error)

	// ProcessNoUSB runs the pipeline without producing an output frame.
	ProcessNoUSB(ctx context.Context, f Frame) (*Result, error)
}

// Info describes a module instance.
type Info struct {
	Name        string        `json:"name"`
	Vendor      string        `json:"vendor"`
	Description string        `json:"description"`
	Backend     string        `json:"backend"`
	Mapping     *VideoMapping `json:"mapping,omitempty"`
}

// Options configures a module instance.
type Options struct {
	// Backend runs the vision stages. Nil selects the native backend.
	Backend Backend

	// Mapping is the video mapping the module was loaded with, if any.
	Mapping *VideoMapping

	// Logger receives module logs. Nil uses the global logger.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Backend == nil {
		o.Backend = NativeBackend{}
	}
	if o.Logger == nil {
		o.Logger = log.L()
	}
	return o
}

// Constructor creates a module instance.
type Constructor func(Options) (Module, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register makes a module available by name. It panics if name is empty or
// already registered.
func Register(name string, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" || c == nil {
		panic("tracker: Register called with empty name or nil constructor")
	}
	if _, dup := registry[name]; dup {
		panic("tracker: Register called twice for module " + name)
	}
	registry[name] = c
}

// New creates the module registered under name.
func New(name string, opts Options) (Module, error) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownModule, "%q", name)
	}
	return c(opts.withDefaults())
}

// Names returns the registered module names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
