// Package term provides a concrete resource type for the stores: IRIs,
// blank nodes and literals with a total order, plus vocabularies that map
// terms to the resource values a store is instantiated with.
package term

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the three sorts of term. The order of the constants is
// the order of kinds in Compare.
type Kind uint8

const (
	IRI Kind = iota
	Blank
	Literal
)

func (k Kind) String() string {
	switch k {
	case IRI:
		return "iri"
	case Blank:
		return "blank"
	case Literal:
		return "literal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Well-known datatype IRIs
const (
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	LangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is an IRI, a blank node or a literal. Literals carry a datatype IRI
// and, for language-tagged strings, a language.
type Term struct {
	Kind     Kind
	Value    string // IRI, blank node label, or lexical form
	Datatype string // literals only
	Lang     string // language-tagged literals only
}

// NewIRI creates an IRI term
func NewIRI(iri string) Term {
	return Term{Kind: IRI, Value: iri}
}

// NewBlank creates a blank node term
func NewBlank(label string) Term {
	return Term{Kind: Blank, Value: label}
}

// NewString creates an xsd:string literal
func NewString(lexical string) Term {
	return Term{Kind: Literal, Value: lexical, Datatype: XSDString}
}

// NewTyped creates a literal with an explicit datatype
func NewTyped(lexical, datatype string) Term {
	return Term{Kind: Literal, Value: lexical, Datatype: datatype}
}

// NewLangString creates a language-tagged literal. Tags are case
// insensitive and stored in lower case.
func NewLangString(lexical, lang string) Term {
	return Term{Kind: Literal, Value: lexical, Datatype: LangString, Lang: strings.ToLower(lang)}
}

// NewInteger creates an xsd:integer literal
func NewInteger(n int64) Term {
	return NewTyped(strconv.FormatInt(n, 10), XSDInteger)
}

// Compare orders terms by kind, then value, datatype and language.
func Compare(a, b Term) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Lang, b.Lang)
}

// Compare compares t with other
func (t Term) Compare(other Term) int {
	return Compare(t, other)
}

// String renders the term in N-Triples style.
func (t Term) String() string {
	switch t.Kind {
	case IRI:
		return "<" + t.Value + ">"
	case Blank:
		return "_:" + t.Value
	}
	lit := strconv.Quote(t.Value)
	switch {
	case t.Lang != "":
		return lit + "@" + t.Lang
	case t.Datatype == "" || t.Datatype == XSDString:
		return lit
	case t.Datatype == XSDInteger:
		return t.Value
	default:
		return lit + "^^<" + t.Datatype + ">"
	}
}
