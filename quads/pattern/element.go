package pattern

import "fmt"

// Element is one position of a resource-or-variable pattern.
// It is one of Variable, Blank, Constant[R] or DefaultGraphElement.
type Element interface {
	IsVariable() bool
	String() string
}

// Variable is a named pattern variable. Two occurrences of the same name in
// one pattern must bind equal values.
type Variable struct {
	Name string
}

func (v Variable) IsVariable() bool { return true }
func (v Variable) String() string   { return "?" + v.Name }

// Blank is an anonymous wildcard. Each occurrence is independent.
type Blank struct{}

func (b Blank) IsVariable() bool { return false }
func (b Blank) String() string   { return "_" }

// Constant binds a position to a resource value.
type Constant[R any] struct {
	Value R
}

func (c Constant[R]) IsVariable() bool { return false }
func (c Constant[R]) String() string   { return fmt.Sprintf("%v", c.Value) }

// DefaultGraphElement selects the default graph in the graph position.
// Anywhere else it behaves like Blank.
type DefaultGraphElement struct{}

func (DefaultGraphElement) IsVariable() bool { return false }
func (DefaultGraphElement) String() string   { return ":default" }

// Var is shorthand for Variable{Name: name}.
func Var(name string) Variable {
	return Variable{Name: name}
}

// Const is shorthand for Constant[R]{Value: v}.
func Const[R any](v R) Constant[R] {
	return Constant[R]{Value: v}
}

// compiler assigns canonical terms left to right, remembering the first
// field each variable appeared in.
type compiler[R any] struct {
	seen map[string]Field
}

func (c *compiler[R]) term(f Field, e Element) Term[R] {
	switch e := e.(type) {
	case nil, Blank:
		return anyTerm[R]()
	case Constant[R]:
		return givenTerm(e.Value)
	case Variable:
		if first, ok := c.seen[e.Name]; ok {
			return Term[R]{kind: sameAs(first)}
		}
		if c.seen == nil {
			c.seen = make(map[string]Field, 4)
		}
		c.seen[e.Name] = f
		return anyTerm[R]()
	case DefaultGraphElement:
		if f == Graph {
			return Term[R]{kind: Default}
		}
		return anyTerm[R]()
	default:
		panic(fmt.Sprintf("pattern: element %T does not hold a %T resource", e, *new(R)))
	}
}
