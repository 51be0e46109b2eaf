// Package quads defines the fact types shared by the in-memory triple and quad
// stores: triples (subject, predicate, object) and quads, which add an optional
// graph label. Resources are opaque values of any type R with a total order
// supplied by the caller as a CompareFunc.
package quads

import (
	"cmp"
	"fmt"
)

// CompareFunc orders resource values. It must be a strict total order that
// stays consistent for the lifetime of any store using it; a broken comparator
// corrupts duplicate detection the same way it would in any sorted container.
type CompareFunc[R any] func(a, b R) int

// Ordered returns the natural comparator for ordered Go types.
func Ordered[R cmp.Ordered]() CompareFunc[R] {
	return cmp.Compare[R]
}

// Triple is a single fact in a graph.
type Triple[R any] struct {
	Subject   R
	Predicate R
	Object    R
}

// NewTriple creates a triple
func NewTriple[R any](s, p, o R) Triple[R] {
	return Triple[R]{Subject: s, Predicate: p, Object: o}
}

// String returns a string representation of the Triple
func (t Triple[R]) String() string {
	return fmt.Sprintf("[%v %v %v]", t.Subject, t.Predicate, t.Object)
}

// InGraph lifts the triple into a quad of the given named graph.
func (t Triple[R]) InGraph(g R) Quad[R] {
	return NewNamedQuad(t.Subject, t.Predicate, t.Object, g)
}

// InDefaultGraph lifts the triple into a quad of the default graph.
func (t Triple[R]) InDefaultGraph() Quad[R] {
	return NewQuad(t.Subject, t.Predicate, t.Object)
}

// Quad is a fact in a dataset. When Named is false the quad belongs to the
// default graph and Graph holds the zero value.
type Quad[R any] struct {
	Subject   R
	Predicate R
	Object    R
	Graph     R
	Named     bool
}

// NewQuad creates a quad in the default graph
func NewQuad[R any](s, p, o R) Quad[R] {
	return Quad[R]{Subject: s, Predicate: p, Object: o}
}

// NewNamedQuad creates a quad in the named graph g
func NewNamedQuad[R any](s, p, o, g R) Quad[R] {
	return Quad[R]{Subject: s, Predicate: p, Object: o, Graph: g, Named: true}
}

// GraphLabel returns the graph label and whether the quad is in a named graph.
func (q Quad[R]) GraphLabel() (R, bool) {
	return q.Graph, q.Named
}

// Triple projects the quad onto its graph-less triple.
func (q Quad[R]) Triple() Triple[R] {
	return Triple[R]{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
}

// String returns a string representation of the Quad
func (q Quad[R]) String() string {
	if !q.Named {
		return fmt.Sprintf("[%v %v %v]", q.Subject, q.Predicate, q.Object)
	}
	return fmt.Sprintf("[%v %v %v %v]", q.Subject, q.Predicate, q.Object, q.Graph)
}

// CompareTriples orders triples lexicographically by subject, predicate, object.
func CompareTriples[R any](c CompareFunc[R], a, b Triple[R]) int {
	if r := c(a.Subject, b.Subject); r != 0 {
		return r
	}
	if r := c(a.Predicate, b.Predicate); r != 0 {
		return r
	}
	return c(a.Object, b.Object)
}

// CompareQuads orders quads lexicographically by subject, predicate, object
// and graph. The default graph sorts before every named graph.
func CompareQuads[R any](c CompareFunc[R], a, b Quad[R]) int {
	if r := CompareTriples(c, a.Triple(), b.Triple()); r != 0 {
		return r
	}
	return CompareGraphs(c, a.Graph, a.Named, b.Graph, b.Named)
}

// CompareGraphs orders optional graph labels, default graph first.
func CompareGraphs[R any](c CompareFunc[R], a R, aNamed bool, b R, bNamed bool) int {
	switch {
	case !aNamed && !bNamed:
		return 0
	case !aNamed:
		return -1
	case !bNamed:
		return 1
	}
	return c(a, b)
}
