package pattern

import (
	"fmt"

	"github.com/wbrown/janus-quads/quads"
)

// CanonicalQuad is a compiled quad pattern. Its subject, predicate and object
// follow the CanonicalTriple rules. The graph is Any, Default, Given, or
// SameAs one of the three other fields; a SameAs graph only matches named
// graphs.
type CanonicalQuad[R any] struct {
	s, p, o, g Term[R]
}

// FromQuad compiles a fully bound quad. A default-graph quad selects the
// default graph only.
func FromQuad[R any](q quads.Quad[R]) CanonicalQuad[R] {
	c := CanonicalQuad[R]{
		s: givenTerm(q.Subject),
		p: givenTerm(q.Predicate),
		o: givenTerm(q.Object),
		g: Term[R]{kind: Default},
	}
	if q.Named {
		c.g = givenTerm(q.Graph)
	}
	return c
}

// FromPartialQuad compiles optional subject, predicate and object values
// with a graph selector.
func FromPartialQuad[R any](s, p, o *R, g GraphSelector[R]) CanonicalQuad[R] {
	return CanonicalQuad[R]{s: optional(s), p: optional(p), o: optional(o), g: g.t}
}

// FromQuadPattern compiles a resource-or-variable quad pattern. A nil graph
// element matches every graph; DefaultGraphElement selects the default graph.
func FromQuadPattern[R any](s, p, o, g Element) CanonicalQuad[R] {
	var c compiler[R]
	return CanonicalQuad[R]{
		s: c.term(Subject, s),
		p: c.term(Predicate, p),
		o: c.term(Object, o),
		g: c.term(Graph, g),
	}
}

// AnyQuad matches every quad of every graph.
func AnyQuad[R any]() CanonicalQuad[R] {
	return CanonicalQuad[R]{}
}

func (q CanonicalQuad[R]) Subject() Term[R]   { return q.s }
func (q CanonicalQuad[R]) Predicate() Term[R] { return q.p }
func (q CanonicalQuad[R]) Object() Term[R]    { return q.o }
func (q CanonicalQuad[R]) Graph() Term[R]     { return q.g }

// Term returns the constraint on field f.
func (q CanonicalQuad[R]) Term(f Field) Term[R] {
	switch f {
	case Subject:
		return q.s
	case Predicate:
		return q.p
	case Object:
		return q.o
	case Graph:
		return q.g
	}
	panic(fmt.Sprintf("pattern: quad has no field %s", f))
}

// Bind fixes field f to v. Binding the graph selects the named graph v.
func (q CanonicalQuad[R]) Bind(f Field, v R) CanonicalQuad[R] {
	terms := [4]*Term[R]{&q.s, &q.p, &q.o, &q.g}
	bind(terms[:], f, v)
	return q
}

// Split separates the triple part of the pattern from its graph term.
func (q CanonicalQuad[R]) Split() (CanonicalTriple[R], Term[R]) {
	return CanonicalTriple[R]{s: q.s, p: q.p, o: q.o}, q.g
}

// FullyBound reports whether subject, predicate and object are Given and
// the graph is Given or Default.
func (q CanonicalQuad[R]) FullyBound() bool {
	t, g := q.Split()
	return t.FullyBound() && (g.kind == Given || g.kind == Default)
}

// Matches tests a quad against the pattern without any index.
func (q CanonicalQuad[R]) Matches(c quads.CompareFunc[R], x quads.Quad[R]) bool {
	t, g := q.Split()
	if !t.Matches(c, x.Triple()) {
		return false
	}
	switch g.kind {
	case Any:
		return true
	case Default:
		return !x.Named
	case Given:
		return x.Named && c(g.value, x.Graph) == 0
	}
	row := [3]R{x.Subject, x.Predicate, x.Object}
	target, _ := g.Target()
	return x.Named && c(row[target], x.Graph) == 0
}

func (q CanonicalQuad[R]) String() string {
	return fmt.Sprintf("[%s %s %s %s]",
		q.s.format(Subject), q.p.format(Predicate), q.o.format(Object), q.g.format(Graph))
}
