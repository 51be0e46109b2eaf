package snapshot

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/store"
	"github.com/wbrown/janus-quads/quads/term"
)

func openTest(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open("", append(opts, WithInMemory())...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample() *store.IndexedDataset[term.Term] {
	d := store.NewIndexedDataset(term.Compare)
	a, knows := term.NewIRI("a"), term.NewIRI("knows")
	d.Insert(quads.NewQuad(a, knows, term.NewIRI("b")))
	d.Insert(quads.NewNamedQuad(a, knows, term.NewIRI("c"), term.NewIRI("g")))
	d.Insert(quads.NewNamedQuad(a, term.NewIRI("name"), term.NewLangString("A", "en"), term.NewIRI("g")))
	for i := 0; i < 300; i++ {
		d.Insert(quads.NewQuad(term.NewBlank("n"), term.NewIRI("value"), term.NewInteger(int64(i))))
	}
	return d
}

func TestSaveAndLoad(t *testing.T) {
	c := annotations.NewCollector(nil)
	s := openTest(t, WithCollector(c))
	d := sample()

	n, err := s.Save("people", d.All())
	require.NoError(t, err)
	assert.Equal(t, d.Len(), n)

	count, err := s.Count("people")
	require.NoError(t, err)
	assert.Equal(t, n, count)

	var order []quads.Quad[term.Term]
	loaded := store.NewDataset(term.Compare)
	got, err := s.Load("people", func(q quads.Quad[term.Term]) bool {
		order = append(order, q)
		return loaded.Insert(q)
	})
	require.NoError(t, err)
	assert.Equal(t, n, got)
	assert.Equal(t, slices.Collect(d.All()), order, "quads come back in saved order")
	assert.True(t, loaded.Indexed().Equal(d))

	require.Len(t, c.Named(annotations.SnapshotSaved), 1)
	loadedEvents := c.Named(annotations.SnapshotLoaded)
	require.Len(t, loadedEvents, 1)
	assert.Equal(t, "people", loadedEvents[0].Data["snapshot"])
	assert.Equal(t, n, loadedEvents[0].Data["quad.count"])
}

func TestSaveReplaces(t *testing.T) {
	s := openTest(t)
	_, err := s.Save("x", sample().All())
	require.NoError(t, err)

	small := store.NewGraph(term.Compare)
	small.Insert(quads.NewTriple(term.NewIRI("s"), term.NewIRI("p"), term.NewIRI("o")))
	d := store.NewDataset(term.Compare)
	for tr := range small.All() {
		d.Insert(tr.InDefaultGraph())
	}
	n, err := s.Save("x", d.All())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := store.NewDataset(term.Compare)
	_, err = s.Load("x", out.Insert)
	require.NoError(t, err)
	assert.True(t, out.Equal(d))
}

func TestNamesAndDelete(t *testing.T) {
	c := annotations.NewCollector(nil)
	s := openTest(t, WithCollector(c))
	for _, name := range []string{"b", "a", "ab"} {
		_, err := s.Save(name, sample().All())
		require.NoError(t, err)
	}
	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "b"}, names)

	require.NoError(t, s.Delete("a"))
	names, err = s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "b"}, names)

	_, err = s.Load("a", func(quads.Quad[term.Term]) bool { return true })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("a"), ErrNotFound)
	assert.NotEmpty(t, c.Named(annotations.ErrorSnapshot))

	n, err := s.Count("ab")
	require.NoError(t, err)
	assert.Equal(t, sample().Len(), n, "deleting a leaves ab intact")
}

func TestBadNames(t *testing.T) {
	s := openTest(t)
	_, err := s.Save("", sample().All())
	assert.ErrorIs(t, err, ErrBadName)
	_, err = s.Save("a/b", sample().All())
	assert.ErrorIs(t, err, ErrBadName)
}

func TestEmptySnapshot(t *testing.T) {
	s := openTest(t)
	n, err := s.Save("empty", store.NewDataset(term.Compare).All())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Load("empty", func(quads.Quad[term.Term]) bool { return true })
	require.NoError(t, err, "an empty snapshot still exists")
	assert.Zero(t, n)
}
