package render

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/term"
)

func TestQuadTable(t *testing.T) {
	qs := []quads.Quad[term.Term]{
		quads.NewQuad(term.NewIRI("a"), term.NewIRI("p"), term.NewString("x")),
		quads.NewNamedQuad(term.NewIRI("a"), term.NewIRI("p"), term.NewInteger(7), term.NewIRI("g")),
	}
	out := Quads(NewTableFormatter(), slices.Values(qs))

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "subject")
	assert.Contains(t, lines[0], "graph")
	assert.Contains(t, out, `"x"`)
	assert.Contains(t, out, "<g>")
	assert.True(t, strings.HasSuffix(out, "\n_2 rows_\n"))
}

func TestTripleTable(t *testing.T) {
	ts := []quads.Triple[int]{quads.NewTriple(1, 2, 3)}
	out := Triples(NewTableFormatter(), slices.Values(ts))
	assert.NotContains(t, out, "graph")
	assert.Contains(t, out, "_1 rows_")
}

func TestEmptyTable(t *testing.T) {
	out := Triples(NewTableFormatter(), slices.Values([]quads.Triple[int](nil)))
	assert.Equal(t, "_Columns: [subject predicate object]_\n\n_No rows_", out)
}

func TestCellTruncatesAndEscapes(t *testing.T) {
	tf := &TableFormatter{MaxWidth: 8, TruncateString: "..."}
	assert.Equal(t, "abcde...", tf.cell("abcdefghijkl"))
	assert.Equal(t, "short", tf.cell("short"))
	assert.Equal(t, `a\|b`, tf.cell("a|b"))
}
