package store

import (
	"iter"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/pattern"
)

// tripleStore is the surface shared by Graph and IndexedGraph.
type tripleStore interface {
	Insert(quads.Triple[int]) bool
	Remove(quads.Triple[int]) bool
	Contains(quads.Triple[int]) bool
	ContainsResource(int) bool
	Len() int
	IsEmpty() bool
	All() iter.Seq[quads.Triple[int]]
	PatternMatching(pattern.CanonicalTriple[int]) iter.Seq[quads.Triple[int]]
	ExtractPatternMatching(pattern.CanonicalTriple[int]) iter.Seq[quads.Triple[int]]
	Resources() iter.Seq[int]
	ResourceCount() int
	String() string
}

var graphVariants = []struct {
	name string
	new  func(opts ...Option) tripleStore
}{
	{"plain", func(opts ...Option) tripleStore { return NewGraph(quads.Ordered[int](), opts...) }},
	{"indexed", func(opts ...Option) tripleStore { return NewIndexedGraph(quads.Ordered[int](), opts...) }},
}

func tr(s, p, o int) quads.Triple[int] {
	return quads.NewTriple(s, p, o)
}

func sortedTriples(seq iter.Seq[quads.Triple[int]]) []quads.Triple[int] {
	out := slices.Collect(seq)
	slices.SortFunc(out, func(a, b quads.Triple[int]) int {
		return quads.CompareTriples(quads.Ordered[int](), a, b)
	})
	return out
}

// reference is the sort + dedup model the stores are checked against.
func reference(ts []quads.Triple[int]) []quads.Triple[int] {
	out := slices.Clone(ts)
	slices.SortFunc(out, func(a, b quads.Triple[int]) int {
		return quads.CompareTriples(quads.Ordered[int](), a, b)
	})
	return slices.Compact(out)
}

func bruteForce(g tripleStore, p pattern.CanonicalTriple[int]) []quads.Triple[int] {
	var out []quads.Triple[int]
	for t := range g.All() {
		if p.Matches(quads.Ordered[int](), t) {
			out = append(out, t)
		}
	}
	return out
}

func TestInsertRemoveScenario(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			g := v.new()
			assert.True(t, g.IsEmpty())

			assert.True(t, g.Insert(tr(1, 2, 3)))
			assert.False(t, g.Insert(tr(1, 2, 3)), "re-insert is a no-op")
			assert.True(t, g.Insert(tr(4, 5, 6)))
			assert.Equal(t, 2, g.Len())

			assert.True(t, g.Remove(tr(1, 2, 3)))
			assert.False(t, g.Remove(tr(1, 2, 3)))
			assert.Equal(t, 1, g.Len())
			assert.False(t, g.Contains(tr(1, 2, 3)))
			assert.True(t, g.Contains(tr(4, 5, 6)))
			assert.Equal(t, []int{4, 5, 6}, slices.Collect(g.Resources()))
			assert.Equal(t, 3, g.ResourceCount())
			assert.False(t, g.ContainsResource(1))
		})
	}
}

func TestReflexivePredicateScenario(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			g := v.new()
			g.Insert(tr(7, 7, 9))
			g.Insert(tr(7, 8, 9))

			x := pattern.Var("x")
			p := pattern.FromTriplePattern[int](x, x, nil)
			assert.Equal(t, []quads.Triple[int]{tr(7, 7, 9)}, slices.Collect(g.PatternMatching(p)))
		})
	}
}

func TestPatternExactness(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			g := v.new()
			for _, x := range []quads.Triple[int]{tr(1, 2, 3), tr(1, 2, 4), tr(2, 2, 3)} {
				g.Insert(x)
			}

			for _, probe := range []quads.Triple[int]{tr(1, 2, 3), tr(1, 2, 5), tr(9, 9, 9), tr(2, 2, 4)} {
				got := slices.Collect(g.PatternMatching(pattern.FromTriple(probe)))
				if g.Contains(probe) {
					assert.Equal(t, []quads.Triple[int]{probe}, got)
				} else {
					assert.Empty(t, got)
				}
			}

			assert.Equal(t, slices.Collect(g.All()), sortedTriples(g.PatternMatching(pattern.AnyTriple[int]())))
		})
	}
}

func TestFuzzAgainstReference(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(0x5eed))
			for i := 0; i < 32; i++ {
				n := i * 11
				g := v.new()
				var inserted []quads.Triple[int]
				for j := 0; j < n; j++ {
					x := tr(rng.Intn(10), rng.Intn(10), rng.Intn(10))
					inserted = append(inserted, x)
					g.Insert(x)
				}

				want := reference(inserted)
				require.Equal(t, len(want), g.Len(), "n=%d", n)
				require.Equal(t, want, slices.Collect(g.All()), "n=%d", n)

				rng.Shuffle(len(inserted), func(a, b int) { inserted[a], inserted[b] = inserted[b], inserted[a] })
				half := inserted[:len(inserted)/2]
				for _, x := range half {
					g.Remove(x)
				}
				removed := reference(half)
				var kept []quads.Triple[int]
				for _, x := range want {
					if _, found := slices.BinarySearchFunc(removed, x, func(a, b quads.Triple[int]) int {
						return quads.CompareTriples(quads.Ordered[int](), a, b)
					}); !found {
						kept = append(kept, x)
					}
				}
				require.Equal(t, len(kept), g.Len(), "n=%d after removal", n)
				require.Equal(t, kept, slices.Collect(g.All()), "n=%d after removal", n)

				for _, x := range removed {
					assert.False(t, g.Contains(x))
				}
			}
		})
	}
}

func TestPatternMatchingAgainstBruteForce(t *testing.T) {
	elements := []pattern.Element{
		nil,
		pattern.Var("x"),
		pattern.Var("y"),
		pattern.Const(0),
		pattern.Const(1),
		pattern.Const(3),
		pattern.Const(42),
	}

	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			g := v.new()
			for j := 0; j < 300; j++ {
				g.Insert(tr(rng.Intn(4), rng.Intn(4), rng.Intn(4)))
			}
			// punch holes so the arena has vacant slots
			for j := 0; j < 60; j++ {
				g.Remove(tr(rng.Intn(4), rng.Intn(4), rng.Intn(4)))
			}

			for _, s := range elements {
				for _, p := range elements {
					for _, o := range elements {
						pat := pattern.FromTriplePattern[int](s, p, o)
						want := bruteForce(g, pat)
						got := sortedTriples(g.PatternMatching(pat))
						assert.Equal(t, want, got, "pattern %s", pat)
					}
				}
			}
		})
	}
}

func TestSameAsRowsAreReflexive(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := NewIndexedGraph(quads.Ordered[int]())
	for j := 0; j < 500; j++ {
		g.Insert(tr(rng.Intn(6), rng.Intn(6), rng.Intn(6)))
	}

	x, y := pattern.Var("x"), pattern.Var("y")
	for m := range g.PatternMatching(pattern.FromTriplePattern[int](x, x, y)) {
		assert.Equal(t, m.Subject, m.Predicate)
	}
	for m := range g.PatternMatching(pattern.FromTriplePattern[int](y, x, x)) {
		assert.Equal(t, m.Predicate, m.Object)
	}
	for m := range g.PatternMatching(pattern.FromTriplePattern[int](x, y, x)) {
		assert.Equal(t, m.Subject, m.Object)
	}
}

func TestMatchingIsIncreasingRowOrder(t *testing.T) {
	g := NewIndexedGraph(quads.Ordered[int]())
	// inserted out of canonical order so row ids and value order disagree
	g.Insert(tr(3, 1, 1))
	g.Insert(tr(1, 1, 1))
	g.Insert(tr(2, 1, 1))

	got := slices.Collect(g.PatternMatching(pattern.FromTriplePattern[int](nil, pattern.Const(1), nil)))
	assert.Equal(t, []quads.Triple[int]{tr(3, 1, 1), tr(1, 1, 1), tr(2, 1, 1)}, got)
	assert.Equal(t, []quads.Triple[int]{tr(1, 1, 1), tr(2, 1, 1), tr(3, 1, 1)}, slices.Collect(g.All()))
}

func TestVacantSlotsAreSkipped(t *testing.T) {
	g := NewIndexedGraph(quads.Ordered[int]())
	g.Insert(tr(1, 1, 1))
	g.Insert(tr(2, 2, 2))
	g.Insert(tr(3, 3, 3))
	g.Remove(tr(1, 1, 1))

	got := slices.Collect(g.PatternMatching(pattern.AnyTriple[int]()))
	assert.Equal(t, []quads.Triple[int]{tr(2, 2, 2), tr(3, 3, 3)}, got)

	// the freed slot is recycled
	g.Insert(tr(4, 4, 4))
	got = slices.Collect(g.PatternMatching(pattern.AnyTriple[int]()))
	assert.Equal(t, []quads.Triple[int]{tr(4, 4, 4), tr(2, 2, 2), tr(3, 3, 3)}, got)
}

func TestExtractConsistency(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(3))
			g := v.new()
			for j := 0; j < 200; j++ {
				g.Insert(tr(rng.Intn(5), rng.Intn(5), rng.Intn(5)))
			}

			x := pattern.Var("x")
			for _, p := range []pattern.CanonicalTriple[int]{
				pattern.FromTriplePattern[int](pattern.Const(2), nil, nil),
				pattern.FromTriplePattern[int](x, nil, x),
				pattern.FromTriplePattern[int](nil, pattern.Const(9), nil),
			} {
				before := g.Len()
				want := sortedTriples(g.PatternMatching(p))
				got := slices.Collect(g.ExtractPatternMatching(p))
				slices.SortFunc(got, func(a, b quads.Triple[int]) int {
					return quads.CompareTriples(quads.Ordered[int](), a, b)
				})
				assert.Equal(t, want, got, "pattern %s", p)
				assert.Equal(t, before-len(want), g.Len())
				assert.Empty(t, slices.Collect(g.PatternMatching(p)))
				for _, removed := range got {
					assert.False(t, g.Contains(removed))
				}
			}
		})
	}
}

func TestExtractStopsEarly(t *testing.T) {
	g := NewIndexedGraph(quads.Ordered[int]())
	for i := 0; i < 5; i++ {
		g.Insert(tr(1, 2, i))
	}
	p := pattern.FromTriplePattern[int](pattern.Const(1), nil, nil)
	n := 0
	for range g.ExtractPatternMatching(p) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.CountMatching(p))
}

func TestRoleSetsFollowPostingLists(t *testing.T) {
	g := NewIndexedGraph(quads.Ordered[int]())
	g.Insert(tr(1, 2, 3))
	g.Insert(tr(1, 5, 6))
	g.Insert(tr(6, 2, 1))

	assert.Equal(t, []int{1, 6}, slices.Collect(g.Subjects()))
	assert.Equal(t, []int{2, 5}, slices.Collect(g.Predicates()))
	assert.Equal(t, []int{1, 3, 6}, slices.Collect(g.Objects()))

	g.Remove(tr(1, 2, 3))
	assert.Equal(t, []int{1, 6}, slices.Collect(g.Subjects()), "1 is still the subject of (1 5 6)")
	assert.Equal(t, []int{2, 5}, slices.Collect(g.Predicates()))
	assert.Equal(t, []int{1, 6}, slices.Collect(g.Objects()))
	assert.Equal(t, 2, g.SubjectCount())
	assert.Equal(t, 2, g.ObjectCount())

	g.Remove(tr(1, 5, 6))
	assert.Equal(t, []int{6}, slices.Collect(g.Subjects()))
	assert.Equal(t, 1, g.PredicateCount())
	assert.Equal(t, []int{1}, slices.Collect(g.Objects()))
	assert.Equal(t, []int{1, 2, 6}, slices.Collect(g.Resources()))
}

func TestMutationDuringIterationPanics(t *testing.T) {
	for _, v := range graphVariants {
		t.Run(v.name, func(t *testing.T) {
			g := v.new()
			g.Insert(tr(1, 2, 3))
			g.Insert(tr(4, 5, 6))

			assert.PanicsWithValue(t, ErrConcurrentMutation, func() {
				for x := range g.All() {
					g.Remove(x)
				}
			})
			assert.PanicsWithValue(t, ErrConcurrentMutation, func() {
				for range g.PatternMatching(pattern.AnyTriple[int]()) {
					g.Insert(tr(7, 8, 9))
				}
			})
			assert.PanicsWithValue(t, ErrConcurrentMutation, func() {
				for range g.Resources() {
					g.Insert(tr(10, 11, 12))
				}
			})
		})
	}
}

func TestIndexedConversion(t *testing.T) {
	c := annotations.NewCollector(nil)
	plain := NewGraph(quads.Ordered[int](), WithCollector(c))
	plain.Insert(tr(1, 2, 3))
	plain.Insert(tr(3, 2, 1))
	plain.Insert(tr(5, 5, 5))
	plain.Remove(tr(3, 2, 1))
	plain.Insert(tr(2, 2, 2))

	want := slices.Collect(plain.All())
	g := plain.Indexed()
	assert.True(t, plain.IsEmpty())
	assert.Equal(t, want, slices.Collect(g.All()))
	assert.Equal(t, []int{1, 2, 5}, slices.Collect(g.Subjects()))

	x := pattern.Var("x")
	got := sortedTriples(g.PatternMatching(pattern.FromTriplePattern[int](x, x, x)))
	assert.Equal(t, []quads.Triple[int]{tr(2, 2, 2), tr(5, 5, 5)}, got)

	assert.True(t, g.Remove(tr(1, 2, 3)))
	assert.Equal(t, []int{2, 5}, slices.Collect(g.Resources()))
	require.Len(t, c.Named(annotations.StoreIndexed), 1)
}

func TestGraphHelpers(t *testing.T) {
	g := NewIndexedGraph(quads.Ordered[int]())
	g.Insert(tr(1, 2, 3))
	g.Insert(tr(1, 2, 4))
	g.Insert(tr(1, 5, 6))

	assert.Equal(t, []int{3, 4}, slices.Collect(g.TripleObjects(1, 2)))
	assert.Empty(t, slices.Collect(g.TripleObjects(9, 2)))

	assert.Equal(t, 2, g.CountMatching(pattern.FromTriplePattern[int](pattern.Const(1), pattern.Const(2), nil)))
	assert.Equal(t, 3, g.CountMatching(pattern.AnyTriple[int]()))
	assert.Equal(t, 0, g.CountMatching(pattern.FromTriplePattern[int](pattern.Const(7), nil, nil)))

	def := slices.Collect(g.MatchQuads(pattern.FromQuadPattern[int](nil, pattern.Const(5), nil, pattern.DefaultGraphElement{})))
	assert.Equal(t, []quads.Quad[int]{quads.NewQuad(1, 5, 6)}, def)
	assert.Empty(t, slices.Collect(g.MatchQuads(pattern.FromQuadPattern[int](nil, nil, nil, pattern.Const(1)))))

	cp := g.Clone()
	assert.True(t, cp.Equal(g))
	cp.Remove(tr(1, 2, 3))
	assert.False(t, cp.Equal(g))
	assert.Equal(t, 3, g.Len())

	assert.Equal(t, "1 2 3 .\n1 2 4 .\n1 5 6 .\n", g.String())
}

func TestMatchAnnotations(t *testing.T) {
	c := annotations.NewCollector(nil)
	g := NewIndexedGraph(quads.Ordered[int](), WithCollector(c))
	g.Insert(tr(1, 1, 2))
	g.Insert(tr(1, 3, 2))

	x := pattern.Var("x")
	slices.Collect(g.PatternMatching(pattern.FromTriplePattern[int](x, x, nil)))

	events := c.Named(annotations.PatternMatch)
	require.Len(t, events, 1)
	assert.Equal(t, "[?s ?s ?o]", events[0].Data["pattern"])
	assert.Equal(t, 1, events[0].Data["match.count"])
	assert.Equal(t, 2, events[0].Data["rows.probed"])
	assert.Equal(t, 1, events[0].Data["rows.rejected"])

	slices.Collect(g.ExtractPatternMatching(pattern.AnyTriple[int]()))
	extracted := c.Named(annotations.PatternExtract)
	require.Len(t, extracted, 1)
	assert.Equal(t, 2, extracted[0].Data["extract.count"])
}

func BenchmarkInsert(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	ts := make([]quads.Triple[int], 10000)
	for i := range ts {
		ts[i] = tr(rng.Intn(1000), rng.Intn(50), rng.Intn(1000))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := NewIndexedGraph(quads.Ordered[int]())
		for _, x := range ts {
			g.Insert(x)
		}
	}
}

func BenchmarkMatchFixedPredicate(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := NewIndexedGraph(quads.Ordered[int]())
	for i := 0; i < 50000; i++ {
		g.Insert(tr(rng.Intn(1000), rng.Intn(50), rng.Intn(1000)))
	}
	p := pattern.FromTriplePattern[int](nil, pattern.Const(7), pattern.Const(3))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range g.PatternMatching(p) {
		}
	}
}
