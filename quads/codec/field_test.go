package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/term"
)

func TestFields(t *testing.T) {
	var buf []byte
	buf = AppendField(buf, []byte("alpha"))
	buf = AppendField(buf, nil)
	buf = AppendField(buf, make([]byte, 300))

	f, rest, err := ReadField(buf)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(f))
	f, rest, err = ReadField(rest)
	require.NoError(t, err)
	assert.Empty(t, f)
	f, rest, err = ReadField(rest)
	require.NoError(t, err)
	assert.Len(t, f, 300)
	assert.Empty(t, rest)

	_, _, err = ReadField(nil)
	assert.ErrorIs(t, err, ErrTruncated)
	_, _, err = ReadField(AppendField(nil, []byte("abc"))[:2])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestQuadEncoding(t *testing.T) {
	tests := []quads.Quad[term.Term]{
		quads.NewQuad(term.NewIRI("s"), term.NewIRI("p"), term.NewString("o")),
		quads.NewNamedQuad(term.NewBlank("b0"), term.NewIRI("p"), term.NewLangString("chat", "fr"), term.NewIRI("g")),
		quads.NewQuad(term.NewIRI(""), term.NewIRI("p"), term.NewInteger(42)),
	}
	for _, q := range tests {
		got, err := DecodeQuad(EncodeQuad(q))
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}
}

func TestQuadDecodingErrors(t *testing.T) {
	q := quads.NewNamedQuad(term.NewIRI("s"), term.NewIRI("p"), term.NewIRI("o"), term.NewIRI("g"))
	enc := EncodeQuad(q)

	_, err := DecodeQuad(enc[:len(enc)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeQuad(append(enc, 0))
	assert.Error(t, err)

	bad := append([]byte{}, enc...)
	bad[0] = 7
	_, err = DecodeQuad(bad)
	assert.Error(t, err)

	bad = append([]byte{}, enc...)
	bad[1] = 9
	_, err = DecodeQuad(bad)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
