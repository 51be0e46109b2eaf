// Package store implements in-memory, set-semantics triple and quad stores.
//
// Each store keeps a reference-counted resource pool, a row arena and a
// primary index ordering rows by value. The indexed variants add per-role
// posting lists, so that pattern matching intersects posting lists instead of
// scanning rows.
//
// Stores are not synchronized. Use Shared to enforce one writer or many
// readers across goroutines. Iterators panic with ErrConcurrentMutation if the
// store they read from is modified while they are being consumed.
package store

import (
	"errors"

	"github.com/wbrown/janus-quads/quads/annotations"
)

// ErrConcurrentMutation is the panic value raised by an iterator whose store
// was modified while the iterator was being consumed.
var ErrConcurrentMutation = errors.New("store: modified during iteration")

// DefaultDegree is the B-tree degree used when no WithDegree option is given.
const DefaultDegree = 32

// Option configures a store.
type Option func(*config)

type config struct {
	collector *annotations.Collector
	degree    int
}

// WithCollector records pattern and structural events on c.
func WithCollector(c *annotations.Collector) Option {
	return func(cfg *config) {
		cfg.collector = c
	}
}

// WithDegree sets the degree of the store's B-trees.
func WithDegree(degree int) Option {
	return func(cfg *config) {
		if degree >= 2 {
			cfg.degree = degree
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{degree: DefaultDegree}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (cfg config) options() []Option {
	return []Option{WithCollector(cfg.collector), WithDegree(cfg.degree)}
}
