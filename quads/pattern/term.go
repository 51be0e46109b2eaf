// Package pattern compiles triple and quad query patterns into a canonical
// form. Every field of a canonical pattern is a wildcard, a given value, or a
// reference to an earlier field holding the same variable, and exactly one
// canonical form exists for any combination of inputs.
package pattern

import "fmt"

// Kind identifies the constraint a canonical pattern places on one field.
type Kind uint8

const (
	// Any accepts every value.
	Any Kind = iota
	// Given accepts exactly one value.
	Given
	// SameAsSubject requires the field to equal the row's subject.
	SameAsSubject
	// SameAsPredicate requires the field to equal the row's predicate.
	SameAsPredicate
	// SameAsObject requires the field to equal the row's object.
	SameAsObject
	// Default only appears in the graph field and selects the default graph.
	Default
)

func (k Kind) String() string {
	switch k {
	case Any:
		return "any"
	case Given:
		return "given"
	case SameAsSubject:
		return "same-as-subject"
	case SameAsPredicate:
		return "same-as-predicate"
	case SameAsObject:
		return "same-as-object"
	case Default:
		return "default-graph"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Field is a position in a triple or quad.
type Field uint8

const (
	Subject Field = iota
	Predicate
	Object
	Graph
)

func (f Field) String() string {
	switch f {
	case Subject:
		return "s"
	case Predicate:
		return "p"
	case Object:
		return "o"
	case Graph:
		return "g"
	default:
		return fmt.Sprintf("Field(%d)", f)
	}
}

func sameAs(f Field) Kind {
	return SameAsSubject + Kind(f)
}

// Term is the canonical constraint on one field. Terms are only produced by
// the compiler, so a Term never holds a combination the canonical form rules
// out.
type Term[R any] struct {
	kind  Kind
	value R
}

// Kind returns the constraint kind.
func (t Term[R]) Kind() Kind {
	return t.kind
}

// Value returns the bound value of a Given term.
func (t Term[R]) Value() (R, bool) {
	return t.value, t.kind == Given
}

// Target returns the field a SameAs term refers to.
func (t Term[R]) Target() (Field, bool) {
	switch t.kind {
	case SameAsSubject, SameAsPredicate, SameAsObject:
		return Field(t.kind - SameAsSubject), true
	}
	return 0, false
}

func (t Term[R]) format(self Field) string {
	switch t.kind {
	case Given:
		return fmt.Sprint(t.value)
	case Default:
		return ":default"
	case Any:
		return "?" + self.String()
	}
	target, _ := t.Target()
	return "?" + target.String()
}

func anyTerm[R any]() Term[R] {
	return Term[R]{kind: Any}
}

func givenTerm[R any](v R) Term[R] {
	return Term[R]{kind: Given, value: v}
}

// GraphSelector is the graph component of a partial quad pattern.
type GraphSelector[R any] struct {
	t Term[R]
}

// AnyGraph matches quads of every graph, default or named.
func AnyGraph[R any]() GraphSelector[R] {
	return GraphSelector[R]{t: anyTerm[R]()}
}

// DefaultGraph matches only quads of the default graph.
func DefaultGraph[R any]() GraphSelector[R] {
	return GraphSelector[R]{t: Term[R]{kind: Default}}
}

// NamedGraph matches only quads of graph g.
func NamedGraph[R any](g R) GraphSelector[R] {
	return GraphSelector[R]{t: givenTerm(g)}
}
