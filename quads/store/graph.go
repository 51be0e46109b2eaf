package store

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/pattern"
)

// Graph is a set of triples with a primary index only. Its resource pool
// counts occurrences instead of keeping posting lists, so pattern matching
// is a filtered pass in canonical order. Convert it with Indexed once
// loading is done.
type Graph[R any] struct {
	t *table[R]
}

// NewGraph creates an empty graph ordered by cmp.
func NewGraph[R any](cmp quads.CompareFunc[R], opts ...Option) *Graph[R] {
	return &Graph[R]{t: newTable(cmp, false, false, opts)}
}

// Len returns the number of triples.
func (g *Graph[R]) Len() int { return g.t.len() }

// IsEmpty reports whether the graph holds no triple.
func (g *Graph[R]) IsEmpty() bool { return g.t.len() == 0 }

// Insert adds t and reports whether it was absent.
func (g *Graph[R]) Insert(t quads.Triple[R]) bool { return g.t.insert(t.InDefaultGraph()) }

// Remove deletes t and reports whether it was present.
func (g *Graph[R]) Remove(t quads.Triple[R]) bool { return g.t.remove(t.InDefaultGraph()) }

// Contains reports whether t is in the graph.
func (g *Graph[R]) Contains(t quads.Triple[R]) bool { return g.t.contains(t.InDefaultGraph()) }

// ContainsResource reports whether any triple references v.
func (g *Graph[R]) ContainsResource(v R) bool { return g.t.containsResource(v) }

// All yields every triple in canonical order.
func (g *Graph[R]) All() iter.Seq[quads.Triple[R]] { return triples(g.t.all()) }

// PatternMatching yields the triples matching p in canonical order.
func (g *Graph[R]) PatternMatching(p pattern.CanonicalTriple[R]) iter.Seq[quads.Triple[R]] {
	return triples(g.t.match(p.WithAnyGraph()))
}

// ExtractPatternMatching removes and yields the triples matching p.
func (g *Graph[R]) ExtractPatternMatching(p pattern.CanonicalTriple[R]) iter.Seq[quads.Triple[R]] {
	return triples(g.t.extract(p.WithAnyGraph()))
}

// Resources yields every distinct resource in order.
func (g *Graph[R]) Resources() iter.Seq[R] { return g.t.resources() }

// ResourceCount returns the number of distinct resources.
func (g *Graph[R]) ResourceCount() int { return g.t.pool.len() }

// Indexed converts g into an IndexedGraph in place of a rebuild: rows and
// resources keep their ids and only posting lists are added. g is left
// empty.
func (g *Graph[R]) Indexed() *IndexedGraph[R] {
	start := time.Now()
	t := g.t
	t.index()
	g.t = newTable(t.cmp, false, false, t.cfg.options())
	t.collector().AddTiming(annotations.StoreIndexed, start, map[string]any{
		"kind":      "graph",
		"row.count": t.len(),
	})
	return &IndexedGraph[R]{t: t}
}

// Clone returns an independent copy.
func (g *Graph[R]) Clone() *Graph[R] { return &Graph[R]{t: g.t.clone()} }

// Equal reports whether both graphs hold the same triples.
func (g *Graph[R]) Equal(o *Graph[R]) bool { return g.t.equal(o.t) }

// String renders one triple per line.
func (g *Graph[R]) String() string { return render(g.t) }

// IndexedGraph is a set of triples with subject, predicate and object
// posting lists. Pattern matching intersects posting lists and yields rows
// in increasing row id order.
type IndexedGraph[R any] struct {
	t *table[R]
}

// NewIndexedGraph creates an empty indexed graph ordered by cmp.
func NewIndexedGraph[R any](cmp quads.CompareFunc[R], opts ...Option) *IndexedGraph[R] {
	return &IndexedGraph[R]{t: newTable(cmp, false, true, opts)}
}

// Len returns the number of triples.
func (g *IndexedGraph[R]) Len() int { return g.t.len() }

// IsEmpty reports whether the graph holds no triple.
func (g *IndexedGraph[R]) IsEmpty() bool { return g.t.len() == 0 }

// Insert adds t and reports whether it was absent.
func (g *IndexedGraph[R]) Insert(t quads.Triple[R]) bool { return g.t.insert(t.InDefaultGraph()) }

// Remove deletes t and reports whether it was present.
func (g *IndexedGraph[R]) Remove(t quads.Triple[R]) bool { return g.t.remove(t.InDefaultGraph()) }

// Contains reports whether t is in the graph.
func (g *IndexedGraph[R]) Contains(t quads.Triple[R]) bool {
	return g.t.contains(t.InDefaultGraph())
}

// ContainsResource reports whether any triple references v.
func (g *IndexedGraph[R]) ContainsResource(v R) bool { return g.t.containsResource(v) }

// All yields every triple in canonical order.
func (g *IndexedGraph[R]) All() iter.Seq[quads.Triple[R]] { return triples(g.t.all()) }

// PatternMatching yields the triples matching p in increasing row id order.
func (g *IndexedGraph[R]) PatternMatching(p pattern.CanonicalTriple[R]) iter.Seq[quads.Triple[R]] {
	return triples(g.t.match(p.WithAnyGraph()))
}

// ExtractPatternMatching removes and yields the triples matching p.
func (g *IndexedGraph[R]) ExtractPatternMatching(p pattern.CanonicalTriple[R]) iter.Seq[quads.Triple[R]] {
	return triples(g.t.extract(p.WithAnyGraph()))
}

// CountMatching returns the number of triples matching p.
func (g *IndexedGraph[R]) CountMatching(p pattern.CanonicalTriple[R]) int {
	return g.t.count(p.WithAnyGraph())
}

// MatchQuads treats the graph as a dataset holding only a default graph.
func (g *IndexedGraph[R]) MatchQuads(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	tp, gt := p.Split()
	if gt.Kind() != pattern.Any && gt.Kind() != pattern.Default {
		return func(func(quads.Quad[R]) bool) {}
	}
	return g.t.match(tp.WithAnyGraph())
}

// TripleObjects yields the objects o of every triple (s, p, o).
func (g *IndexedGraph[R]) TripleObjects(s, p R) iter.Seq[R] {
	matches := g.t.match(pattern.FromPartialTriple(&s, &p, nil).WithAnyGraph())
	return func(yield func(R) bool) {
		for q := range matches {
			if !yield(q.Object) {
				return
			}
		}
	}
}

// Resources yields every distinct resource in order.
func (g *IndexedGraph[R]) Resources() iter.Seq[R] { return g.t.resources() }

// ResourceCount returns the number of distinct resources.
func (g *IndexedGraph[R]) ResourceCount() int { return g.t.pool.len() }

// Subjects yields the distinct subjects in order.
func (g *IndexedGraph[R]) Subjects() iter.Seq[R] { return g.t.values(g.t.roles[roleSubject]) }

// SubjectCount returns the number of distinct subjects.
func (g *IndexedGraph[R]) SubjectCount() int { return g.t.roles[roleSubject].Len() }

// Predicates yields the distinct predicates in order.
func (g *IndexedGraph[R]) Predicates() iter.Seq[R] { return g.t.values(g.t.roles[rolePredicate]) }

// PredicateCount returns the number of distinct predicates.
func (g *IndexedGraph[R]) PredicateCount() int { return g.t.roles[rolePredicate].Len() }

// Objects yields the distinct objects in order.
func (g *IndexedGraph[R]) Objects() iter.Seq[R] { return g.t.values(g.t.roles[roleObject]) }

// ObjectCount returns the number of distinct objects.
func (g *IndexedGraph[R]) ObjectCount() int { return g.t.roles[roleObject].Len() }

// Clone returns an independent copy.
func (g *IndexedGraph[R]) Clone() *IndexedGraph[R] { return &IndexedGraph[R]{t: g.t.clone()} }

// Equal reports whether both graphs hold the same triples.
func (g *IndexedGraph[R]) Equal(o *IndexedGraph[R]) bool { return g.t.equal(o.t) }

// String renders one triple per line.
func (g *IndexedGraph[R]) String() string { return render(g.t) }

func triples[R any](seq iter.Seq[quads.Quad[R]]) iter.Seq[quads.Triple[R]] {
	return func(yield func(quads.Triple[R]) bool) {
		for q := range seq {
			if !yield(q.Triple()) {
				return
			}
		}
	}
}

func render[R any](t *table[R]) string {
	var b strings.Builder
	for q := range t.all() {
		fmt.Fprintf(&b, "%v %v %v", q.Subject, q.Predicate, q.Object)
		if q.Named {
			fmt.Fprintf(&b, " %v", q.Graph)
		}
		b.WriteString(" .\n")
	}
	return b.String()
}
