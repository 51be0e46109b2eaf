package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/term"
)

var (
	// ErrTruncated indicates input that ends inside a field
	ErrTruncated = errors.New("codec: truncated input")

	// ErrUnknownKind indicates a term kind byte outside the known kinds
	ErrUnknownKind = errors.New("codec: unknown term kind")
)

const (
	flagDefault byte = 0
	flagNamed   byte = 1
)

// AppendField appends a uvarint length followed by the field bytes.
func AppendField(dst []byte, field []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(field)))
	return append(dst, field...)
}

// ReadField reads one field written by AppendField and returns the
// remaining input. The field aliases src.
func ReadField(src []byte) (field, rest []byte, err error) {
	n, k := binary.Uvarint(src)
	if k <= 0 {
		return nil, nil, ErrTruncated
	}
	src = src[k:]
	if uint64(len(src)) < n {
		return nil, nil, fmt.Errorf("%w: field of %d bytes, %d left", ErrTruncated, n, len(src))
	}
	return src[:n], src[n:], nil
}

// AppendTerm appends the kind byte and the three string parts of t.
func AppendTerm(dst []byte, t term.Term) []byte {
	dst = append(dst, byte(t.Kind))
	dst = AppendField(dst, []byte(t.Value))
	dst = AppendField(dst, []byte(t.Datatype))
	return AppendField(dst, []byte(t.Lang))
}

// ReadTerm reads one term written by AppendTerm.
func ReadTerm(src []byte) (term.Term, []byte, error) {
	if len(src) == 0 {
		return term.Term{}, nil, ErrTruncated
	}
	kind := term.Kind(src[0])
	if kind > term.Literal {
		return term.Term{}, nil, fmt.Errorf("%w: %d", ErrUnknownKind, src[0])
	}
	var parts [3][]byte
	rest := src[1:]
	for i := range parts {
		var err error
		if parts[i], rest, err = ReadField(rest); err != nil {
			return term.Term{}, nil, err
		}
	}
	return term.Term{
		Kind:     kind,
		Value:    string(parts[0]),
		Datatype: string(parts[1]),
		Lang:     string(parts[2]),
	}, rest, nil
}

// EncodeQuad encodes a quad as a graph flag followed by its terms. Default
// graph quads carry three terms.
func EncodeQuad(q quads.Quad[term.Term]) []byte {
	buf := make([]byte, 0, 64)
	if q.Named {
		buf = append(buf, flagNamed)
	} else {
		buf = append(buf, flagDefault)
	}
	buf = AppendTerm(buf, q.Subject)
	buf = AppendTerm(buf, q.Predicate)
	buf = AppendTerm(buf, q.Object)
	if q.Named {
		buf = AppendTerm(buf, q.Graph)
	}
	return buf
}

// DecodeQuad is the inverse of EncodeQuad. Trailing bytes are an error.
func DecodeQuad(src []byte) (quads.Quad[term.Term], error) {
	var q quads.Quad[term.Term]
	if len(src) == 0 {
		return q, ErrTruncated
	}
	flag, rest := src[0], src[1:]
	if flag != flagDefault && flag != flagNamed {
		return q, fmt.Errorf("codec: bad graph flag %d", flag)
	}

	n := 3
	if flag == flagNamed {
		n = 4
	}
	var ts [4]term.Term
	for i := 0; i < n; i++ {
		var err error
		if ts[i], rest, err = ReadTerm(rest); err != nil {
			return q, fmt.Errorf("decoding quad term %d: %w", i, err)
		}
	}
	if len(rest) != 0 {
		return q, fmt.Errorf("codec: %d trailing bytes after quad", len(rest))
	}

	if flag == flagNamed {
		return quads.NewNamedQuad(ts[0], ts[1], ts[2], ts[3]), nil
	}
	return quads.NewQuad(ts[0], ts[1], ts[2]), nil
}
