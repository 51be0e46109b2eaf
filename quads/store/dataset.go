package store

import (
	"iter"
	"time"

	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/pattern"
)

// Dataset is a set of quads with a primary index only. See Graph.
type Dataset[R any] struct {
	t *table[R]
}

// NewDataset creates an empty dataset ordered by cmp.
func NewDataset[R any](cmp quads.CompareFunc[R], opts ...Option) *Dataset[R] {
	return &Dataset[R]{t: newTable(cmp, true, false, opts)}
}

// Len returns the number of quads.
func (d *Dataset[R]) Len() int { return d.t.len() }

// IsEmpty reports whether the dataset holds no quad.
func (d *Dataset[R]) IsEmpty() bool { return d.t.len() == 0 }

// Insert adds q and reports whether it was absent.
func (d *Dataset[R]) Insert(q quads.Quad[R]) bool { return d.t.insert(q) }

// Remove deletes q and reports whether it was present.
func (d *Dataset[R]) Remove(q quads.Quad[R]) bool { return d.t.remove(q) }

// Contains reports whether q is in the dataset.
func (d *Dataset[R]) Contains(q quads.Quad[R]) bool { return d.t.contains(q) }

// ContainsResource reports whether any quad references v.
func (d *Dataset[R]) ContainsResource(v R) bool { return d.t.containsResource(v) }

// All yields every quad in canonical order.
func (d *Dataset[R]) All() iter.Seq[quads.Quad[R]] { return d.t.all() }

// PatternMatching yields the quads matching p in canonical order.
func (d *Dataset[R]) PatternMatching(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return d.t.match(p)
}

// ExtractPatternMatching removes and yields the quads matching p.
func (d *Dataset[R]) ExtractPatternMatching(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return d.t.extract(p)
}

// RemoveGraph detaches a graph: the default graph when label is nil, the
// named graph *label otherwise. It returns false if the named graph has no
// quads.
func (d *Dataset[R]) RemoveGraph(label *R) (*Graph[R], bool) {
	t, ok := d.t.removeGraph(label)
	if !ok {
		return nil, false
	}
	return &Graph[R]{t: t}, true
}

// Resources yields every distinct resource in order.
func (d *Dataset[R]) Resources() iter.Seq[R] { return d.t.resources() }

// ResourceCount returns the number of distinct resources.
func (d *Dataset[R]) ResourceCount() int { return d.t.pool.len() }

// Indexed converts d into an IndexedDataset. d is left empty.
func (d *Dataset[R]) Indexed() *IndexedDataset[R] {
	start := time.Now()
	t := d.t
	t.index()
	d.t = newTable(t.cmp, true, false, t.cfg.options())
	t.collector().AddTiming(annotations.StoreIndexed, start, map[string]any{
		"kind":      "dataset",
		"row.count": t.len(),
	})
	return &IndexedDataset[R]{t: t}
}

// Clone returns an independent copy.
func (d *Dataset[R]) Clone() *Dataset[R] { return &Dataset[R]{t: d.t.clone()} }

// Equal reports whether both datasets hold the same quads.
func (d *Dataset[R]) Equal(o *Dataset[R]) bool { return d.t.equal(o.t) }

// String renders one quad per line.
func (d *Dataset[R]) String() string { return render(d.t) }

// IndexedDataset is a set of quads with subject, predicate, object and
// graph posting lists, plus a posting list for the default graph.
type IndexedDataset[R any] struct {
	t *table[R]
}

// NewIndexedDataset creates an empty indexed dataset ordered by cmp.
func NewIndexedDataset[R any](cmp quads.CompareFunc[R], opts ...Option) *IndexedDataset[R] {
	return &IndexedDataset[R]{t: newTable(cmp, true, true, opts)}
}

// Len returns the number of quads.
func (d *IndexedDataset[R]) Len() int { return d.t.len() }

// IsEmpty reports whether the dataset holds no quad.
func (d *IndexedDataset[R]) IsEmpty() bool { return d.t.len() == 0 }

// Insert adds q and reports whether it was absent.
func (d *IndexedDataset[R]) Insert(q quads.Quad[R]) bool { return d.t.insert(q) }

// Remove deletes q and reports whether it was present.
func (d *IndexedDataset[R]) Remove(q quads.Quad[R]) bool { return d.t.remove(q) }

// Contains reports whether q is in the dataset.
func (d *IndexedDataset[R]) Contains(q quads.Quad[R]) bool { return d.t.contains(q) }

// ContainsResource reports whether any quad references v.
func (d *IndexedDataset[R]) ContainsResource(v R) bool { return d.t.containsResource(v) }

// All yields every quad in canonical order.
func (d *IndexedDataset[R]) All() iter.Seq[quads.Quad[R]] { return d.t.all() }

// PatternMatching yields the quads matching p in increasing row id order.
func (d *IndexedDataset[R]) PatternMatching(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return d.t.match(p)
}

// ExtractPatternMatching removes and yields the quads matching p.
func (d *IndexedDataset[R]) ExtractPatternMatching(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return d.t.extract(p)
}

// CountMatching returns the number of quads matching p.
func (d *IndexedDataset[R]) CountMatching(p pattern.CanonicalQuad[R]) int {
	return d.t.count(p)
}

// RemoveGraph detaches a graph: the default graph when label is nil, the
// named graph *label otherwise. It returns false if the named graph does not
// exist. The default graph always exists, possibly empty.
func (d *IndexedDataset[R]) RemoveGraph(label *R) (*Graph[R], bool) {
	t, ok := d.t.removeGraph(label)
	if !ok {
		return nil, false
	}
	return &Graph[R]{t: t}, true
}

// Graph yields the triples of the default graph (label nil) or of a named
// graph.
func (d *IndexedDataset[R]) Graph(label *R) iter.Seq[quads.Triple[R]] {
	sel := pattern.DefaultGraph[R]()
	if label != nil {
		sel = pattern.NamedGraph(*label)
	}
	return triples(d.t.match(pattern.AnyTriple[R]().WithGraph(sel)))
}

// Resources yields every distinct resource in order.
func (d *IndexedDataset[R]) Resources() iter.Seq[R] { return d.t.resources() }

// ResourceCount returns the number of distinct resources.
func (d *IndexedDataset[R]) ResourceCount() int { return d.t.pool.len() }

// Subjects yields the distinct subjects in order.
func (d *IndexedDataset[R]) Subjects() iter.Seq[R] { return d.t.values(d.t.roles[roleSubject]) }

// SubjectCount returns the number of distinct subjects.
func (d *IndexedDataset[R]) SubjectCount() int { return d.t.roles[roleSubject].Len() }

// Predicates yields the distinct predicates in order.
func (d *IndexedDataset[R]) Predicates() iter.Seq[R] { return d.t.values(d.t.roles[rolePredicate]) }

// PredicateCount returns the number of distinct predicates.
func (d *IndexedDataset[R]) PredicateCount() int { return d.t.roles[rolePredicate].Len() }

// Objects yields the distinct objects in order.
func (d *IndexedDataset[R]) Objects() iter.Seq[R] { return d.t.values(d.t.roles[roleObject]) }

// ObjectCount returns the number of distinct objects.
func (d *IndexedDataset[R]) ObjectCount() int { return d.t.roles[roleObject].Len() }

// NamedGraphs yields the labels of the non-empty named graphs in order.
func (d *IndexedDataset[R]) NamedGraphs() iter.Seq[R] { return d.t.values(d.t.roles[roleGraph]) }

// NamedGraphCount returns the number of non-empty named graphs.
func (d *IndexedDataset[R]) NamedGraphCount() int { return d.t.roles[roleGraph].Len() }

// DefaultGraphLen returns the number of quads in the default graph.
func (d *IndexedDataset[R]) DefaultGraphLen() int { return int(d.t.defaults.GetCardinality()) }

// Clone returns an independent copy.
func (d *IndexedDataset[R]) Clone() *IndexedDataset[R] { return &IndexedDataset[R]{t: d.t.clone()} }

// Equal reports whether both datasets hold the same quads.
func (d *IndexedDataset[R]) Equal(o *IndexedDataset[R]) bool { return d.t.equal(o.t) }

// String renders one quad per line.
func (d *IndexedDataset[R]) String() string { return render(d.t) }
