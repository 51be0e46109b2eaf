package pattern

import (
	"fmt"

	"github.com/wbrown/janus-quads/quads"
)

// CanonicalTriple is a compiled triple pattern.
//
// The subject is Any or Given. The predicate may also be SameAsSubject, and
// the object may be SameAsSubject or SameAsPredicate. A SameAs term always
// names the first field holding its variable.
type CanonicalTriple[R any] struct {
	s, p, o Term[R]
}

// FromTriple compiles a fully bound triple, as used for exact lookups.
func FromTriple[R any](t quads.Triple[R]) CanonicalTriple[R] {
	return CanonicalTriple[R]{
		s: givenTerm(t.Subject),
		p: givenTerm(t.Predicate),
		o: givenTerm(t.Object),
	}
}

// FromPartialTriple compiles a triple of optional values; nil is a wildcard.
func FromPartialTriple[R any](s, p, o *R) CanonicalTriple[R] {
	return CanonicalTriple[R]{s: optional(s), p: optional(p), o: optional(o)}
}

// FromTriplePattern compiles a resource-or-variable pattern. A nil element is
// a wildcard.
func FromTriplePattern[R any](s, p, o Element) CanonicalTriple[R] {
	var c compiler[R]
	return CanonicalTriple[R]{
		s: c.term(Subject, s),
		p: c.term(Predicate, p),
		o: c.term(Object, o),
	}
}

// AnyTriple matches every triple.
func AnyTriple[R any]() CanonicalTriple[R] {
	return CanonicalTriple[R]{}
}

func optional[R any](v *R) Term[R] {
	if v == nil {
		return anyTerm[R]()
	}
	return givenTerm(*v)
}

func (t CanonicalTriple[R]) Subject() Term[R]   { return t.s }
func (t CanonicalTriple[R]) Predicate() Term[R] { return t.p }
func (t CanonicalTriple[R]) Object() Term[R]    { return t.o }

// Term returns the constraint on field f, which must not be Graph.
func (t CanonicalTriple[R]) Term(f Field) Term[R] {
	switch f {
	case Subject:
		return t.s
	case Predicate:
		return t.p
	case Object:
		return t.o
	}
	panic(fmt.Sprintf("pattern: triple has no field %s", f))
}

// Bind fixes field f to v. Every field sharing f's variable becomes Given(v)
// as well.
func (t CanonicalTriple[R]) Bind(f Field, v R) CanonicalTriple[R] {
	terms := [3]*Term[R]{&t.s, &t.p, &t.o}
	bind(terms[:], f, v)
	return t
}

// WithAnyGraph lifts the pattern to a quad pattern over every graph.
func (t CanonicalTriple[R]) WithAnyGraph() CanonicalQuad[R] {
	return CanonicalQuad[R]{s: t.s, p: t.p, o: t.o, g: anyTerm[R]()}
}

// WithGraph lifts the pattern to a quad pattern restricted by sel.
func (t CanonicalTriple[R]) WithGraph(sel GraphSelector[R]) CanonicalQuad[R] {
	return CanonicalQuad[R]{s: t.s, p: t.p, o: t.o, g: sel.t}
}

// FullyBound reports whether every field is Given.
func (t CanonicalTriple[R]) FullyBound() bool {
	return t.s.kind == Given && t.p.kind == Given && t.o.kind == Given
}

// Matches tests a triple against the pattern without any index.
func (t CanonicalTriple[R]) Matches(c quads.CompareFunc[R], x quads.Triple[R]) bool {
	row := [3]R{x.Subject, x.Predicate, x.Object}
	terms := [3]Term[R]{t.s, t.p, t.o}
	for i, term := range terms {
		if !term.accepts(c, row[:], row[i]) {
			return false
		}
	}
	return true
}

func (t CanonicalTriple[R]) String() string {
	return fmt.Sprintf("[%s %s %s]", t.s.format(Subject), t.p.format(Predicate), t.o.format(Object))
}

func (t Term[R]) accepts(c quads.CompareFunc[R], row []R, v R) bool {
	switch t.kind {
	case Any:
		return true
	case Given:
		return c(t.value, v) == 0
	}
	target, ok := t.Target()
	return ok && c(row[target], v) == 0
}

// bind rewrites the equivalence class of field f to Given(v).
func bind[R any](terms []*Term[R], f Field, v R) {
	rep := f
	if target, ok := terms[f].Target(); ok {
		rep = target
	}
	for i, term := range terms {
		target, ok := term.Target()
		if Field(i) == rep || (ok && target == rep) {
			*term = givenTerm(v)
		}
	}
}
