// Package fixture generates seeded random datasets for benchmarks and
// manual testing.
package fixture

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/snapshot"
	"github.com/wbrown/janus-quads/quads/term"
)

// Config specifies what kind of dataset to build
type Config struct {
	Seed         int64
	Quads        int     // Number of quads to draw; duplicates are dropped on insert
	Subjects     int     // Size of the subject vocabulary
	Predicates   int     // Size of the predicate vocabulary
	Objects      int     // Size of the object vocabulary, half IRIs and half integers
	Graphs       int     // Number of named graphs
	DefaultRatio float64 // Fraction of quads in the default graph
	Namespace    string  // IRI prefix for generated resources
	OutputPath   string  // Where to store the snapshot database
}

// DefaultConfig returns a small dataset: 10,000 quads over a few hundred
// resources.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		Quads:        10_000,
		Subjects:     200,
		Predicates:   12,
		Objects:      400,
		Graphs:       4,
		DefaultRatio: 0.25,
		Namespace:    "http://example.org/",
		OutputPath:   "testdata/quads_small.db",
	}
}

// MediumConfig returns a dataset of 250,000 quads.
func MediumConfig() Config {
	cfg := DefaultConfig()
	cfg.Quads = 250_000
	cfg.Subjects = 5_000
	cfg.Predicates = 40
	cfg.Objects = 10_000
	cfg.Graphs = 16
	cfg.OutputPath = "testdata/quads_medium.db"
	return cfg
}

// LargeConfig returns a dataset of 2,000,000 quads for stress testing.
func LargeConfig() Config {
	cfg := MediumConfig()
	cfg.Quads = 2_000_000
	cfg.Subjects = 50_000
	cfg.Objects = 100_000
	cfg.Graphs = 64
	cfg.OutputPath = "testdata/quads_large.db"
	return cfg
}

// Generate yields cfg.Quads random quads. The same config always yields
// the same sequence.
func Generate(cfg Config) iter.Seq[quads.Quad[term.Term]] {
	return func(yield func(quads.Quad[term.Term]) bool) {
		rng := rand.New(rand.NewSource(cfg.Seed))
		iri := func(kind string, n int) term.Term {
			return term.NewIRI(fmt.Sprintf("%s%s/%d", cfg.Namespace, kind, n))
		}
		for i := 0; i < cfg.Quads; i++ {
			s := iri("s", rng.Intn(max(cfg.Subjects, 1)))
			p := iri("p", rng.Intn(max(cfg.Predicates, 1)))

			var o term.Term
			if n := rng.Intn(max(cfg.Objects, 1)); n%2 == 0 {
				o = iri("o", n)
			} else {
				o = term.NewInteger(int64(n))
			}

			q := quads.NewQuad(s, p, o)
			if cfg.Graphs > 0 && rng.Float64() >= cfg.DefaultRatio {
				q = quads.NewNamedQuad(s, p, o, iri("g", rng.Intn(cfg.Graphs)))
			}
			if !yield(q) {
				return
			}
		}
	}
}

// WriteNotation writes seq as one fact per line.
func WriteNotation(w io.Writer, seq iter.Seq[quads.Quad[term.Term]]) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for q := range seq {
		var err error
		if label, ok := q.GraphLabel(); ok {
			_, err = fmt.Fprintf(bw, "[%s %s %s %s]\n", q.Subject, q.Predicate, q.Object, label)
		} else {
			_, err = fmt.Fprintf(bw, "[%s %s %s]\n", q.Subject, q.Predicate, q.Object)
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// BuildSnapshot replaces the database at cfg.OutputPath with one holding
// the generated quads under name. It returns the number of quads saved.
func BuildSnapshot(cfg Config, name string, opts ...snapshot.Option) (int, error) {
	if err := os.RemoveAll(cfg.OutputPath); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to remove existing db: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	snaps, err := snapshot.Open(cfg.OutputPath, opts...)
	if err != nil {
		return 0, err
	}
	defer snaps.Close()

	return snaps.Save(name, Generate(cfg))
}
