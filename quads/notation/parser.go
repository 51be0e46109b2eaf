// Package notation reads facts and patterns written as bracketed vectors:
//
//	[<http://example.org/alice> foaf:knows _:b0]
//	[alice age 42 <http://example.org/graphs/people>]
//	[?who knows ?who :default]
//
// Facts have three or four positions; the fourth names a graph and
// :default (or its absence) selects the default graph. Patterns may use
// ?variables and _ wildcards, and an omitted graph matches any graph.
package notation

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/pattern"
	"github.com/wbrown/janus-quads/quads/term"
)

// ErrUnexpectedToken is wrapped by every syntax error after lexing.
var ErrUnexpectedToken = errors.New("unexpected token")

var intPattern = regexp.MustCompile(`^[+-]?\d+$`)

const defaultGraph = ":default"

// Parser reads facts and patterns from a lexed input
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

func newParser(input string) (*Parser, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer), nil
}

// ParseQuads parses every fact in input.
func ParseQuads(input string) ([]quads.Quad[term.Term], error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	return p.Quads()
}

// ParsePattern parses exactly one pattern.
func ParsePattern(input string) (pattern.CanonicalQuad[term.Term], error) {
	p, err := newParser(input)
	if err != nil {
		return pattern.CanonicalQuad[term.Term]{}, err
	}
	pat, err := p.Pattern()
	if err != nil {
		return pat, err
	}
	if tok := p.lexer.PeekToken(); tok.Type != TokenEOF {
		return pat, unexpected(tok, "end of input")
	}
	return pat, nil
}

// ParseTerm parses a single constant such as <iri>, _:b, "lit"@en or 42.
func ParseTerm(input string) (term.Term, error) {
	p, err := newParser(input)
	if err != nil {
		return term.Term{}, err
	}
	tok := p.lexer.NextToken()
	if tok.Type != TokenString && tok.Type != TokenAtom {
		return term.Term{}, unexpected(tok, "a term")
	}
	it := item{tok: tok}
	if tok.Type == TokenString && p.lexer.PeekToken().Type == TokenAtom {
		it.suffix = p.lexer.NextToken().Value
	}
	if next := p.lexer.PeekToken(); next.Type != TokenEOF {
		return term.Term{}, unexpected(next, "end of input")
	}
	return p.constant(it)
}

// ReadQuads reads all of r and parses it as facts. The collector receives
// a parse event naming source, or an error event.
func ReadQuads(source string, r io.Reader, c *annotations.Collector) ([]quads.Quad[term.Term], error) {
	start := time.Now()
	data, err := io.ReadAll(r)
	if err == nil {
		var qs []quads.Quad[term.Term]
		if qs, err = ParseQuads(string(data)); err == nil {
			c.AddTiming(annotations.NotationParsed, start, map[string]any{
				"source":     source,
				"fact.count": len(qs),
			})
			return qs, nil
		}
	}
	err = fmt.Errorf("reading %s: %w", source, err)
	c.AddTiming(annotations.ErrorNotation, start, map[string]any{"error": err.Error()})
	return nil, err
}

// Quads reads facts until EOF
func (p *Parser) Quads() ([]quads.Quad[term.Term], error) {
	var out []quads.Quad[term.Term]
	for p.lexer.PeekToken().Type != TokenEOF {
		q, err := p.Quad()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Quad reads one fact
func (p *Parser) Quad() (quads.Quad[term.Term], error) {
	var q quads.Quad[term.Term]
	items, err := p.vector()
	if err != nil {
		return q, err
	}

	ts := make([]term.Term, 3)
	for i := range ts {
		if ts[i], err = p.constant(items[i]); err != nil {
			return q, err
		}
	}
	q = quads.NewQuad(ts[0], ts[1], ts[2])

	if len(items) == 4 && !items[3].is(defaultGraph) {
		g, err := p.constant(items[3])
		if err != nil {
			return q, err
		}
		q.Graph, q.Named = g, true
	}
	return q, nil
}

// Pattern reads one pattern
func (p *Parser) Pattern() (pattern.CanonicalQuad[term.Term], error) {
	items, err := p.vector()
	if err != nil {
		return pattern.CanonicalQuad[term.Term]{}, err
	}

	elems := make([]pattern.Element, 4)
	for i, it := range items {
		if elems[i], err = p.element(it, i == 3); err != nil {
			return pattern.CanonicalQuad[term.Term]{}, err
		}
	}
	return pattern.FromQuadPattern[term.Term](elems[0], elems[1], elems[2], elems[3]), nil
}

// item is one position of a vector: a literal with its optional suffix, or
// a plain atom.
type item struct {
	tok    Token
	suffix string
}

func (it item) is(atom string) bool {
	return it.tok.Type == TokenAtom && it.tok.Value == atom
}

func (p *Parser) vector() ([]item, error) {
	open := p.lexer.NextToken()
	if open.Type != TokenLeftBracket {
		return nil, unexpected(open, "[")
	}

	var items []item
	for {
		tok := p.lexer.NextToken()
		switch tok.Type {
		case TokenRightBracket:
			if len(items) < 3 {
				return nil, fmt.Errorf("%w: vector at %d:%d has %d positions, want 3 or 4",
					ErrUnexpectedToken, open.Line, open.Col, len(items))
			}
			return items, nil
		case TokenEOF:
			return nil, unexpected(tok, "]")
		case TokenString:
			it := item{tok: tok}
			if next := p.lexer.PeekToken(); next.Type == TokenAtom &&
				(strings.HasPrefix(next.Value, "@") || strings.HasPrefix(next.Value, "^^")) {
				it.suffix = p.lexer.NextToken().Value
			}
			items = append(items, it)
		case TokenAtom:
			items = append(items, item{tok: tok})
		default:
			return nil, unexpected(tok, "a term")
		}
		if len(items) > 4 {
			return nil, fmt.Errorf("%w: vector at %d:%d has more than 4 positions",
				ErrUnexpectedToken, open.Line, open.Col)
		}
	}
}

func (p *Parser) element(it item, graph bool) (pattern.Element, error) {
	if it.tok.Type == TokenAtom {
		switch v := it.tok.Value; {
		case v == "_":
			return pattern.Blank{}, nil
		case strings.HasPrefix(v, "?") && len(v) > 1:
			return pattern.Var(v[1:]), nil
		case v == defaultGraph:
			if !graph {
				return nil, unexpected(it.tok, "a term outside the graph position")
			}
			return pattern.DefaultGraphElement{}, nil
		}
	}
	t, err := p.constant(it)
	if err != nil {
		return nil, err
	}
	return pattern.Const(t), nil
}

func (p *Parser) constant(it item) (term.Term, error) {
	tok := it.tok
	if tok.Type == TokenString {
		switch {
		case strings.HasPrefix(it.suffix, "@") && len(it.suffix) > 1:
			return term.NewLangString(tok.Value, it.suffix[1:]), nil
		case strings.HasPrefix(it.suffix, "^^"):
			dt := it.suffix[2:]
			if strings.HasPrefix(dt, "<") && strings.HasSuffix(dt, ">") {
				dt = dt[1 : len(dt)-1]
			}
			if dt == "" {
				return term.Term{}, unexpected(tok, "a datatype")
			}
			return term.NewTyped(tok.Value, dt), nil
		case it.suffix != "":
			return term.Term{}, unexpected(tok, "a language or datatype")
		}
		return term.NewString(tok.Value), nil
	}

	v := tok.Value
	switch {
	case strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">"):
		return term.NewIRI(v[1 : len(v)-1]), nil
	case strings.HasPrefix(v, "_:") && len(v) > 2:
		return term.NewBlank(v[2:]), nil
	case intPattern.MatchString(v):
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return term.NewInteger(n), nil
		}
		return term.NewTyped(strings.TrimPrefix(v, "+"), term.XSDInteger), nil
	case v == "_" || v == defaultGraph || strings.HasPrefix(v, "?") ||
		strings.HasPrefix(v, "@") || strings.HasPrefix(v, "^^") || strings.HasPrefix(v, "<"):
		return term.Term{}, unexpected(tok, "a constant")
	}
	return term.NewIRI(v), nil
}

func unexpected(tok Token, want string) error {
	return fmt.Errorf("%w %v, expected %s", ErrUnexpectedToken, tok, want)
}
