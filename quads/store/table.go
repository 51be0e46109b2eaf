package store

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/arena"
)

// noGraph marks the graph slot of a triple row or a default-graph quad row.
const noGraph ResourceID = math.MaxUint32

// row holds pool ids for subject, predicate, object and graph.
type row [numRoles]ResourceID

// rowItem is a primary index entry. The row is copied in so the comparator
// only has to dereference the pool.
type rowItem struct {
	id RowID
	r  row
}

// table is the storage engine behind every store type. Triples are rows
// whose graph slot is always noGraph.
type table[R any] struct {
	cfg     config
	cmp     quads.CompareFunc[R]
	quad    bool
	indexed bool

	pool    *pool[R]
	rows    *arena.Arena[row]
	primary *btree.BTreeG[rowItem]

	// indexed only
	roles    [numRoles]*btree.BTreeG[resItem[R]]
	defaults *roaring.Bitmap

	// gen changes on every mutation; iterators compare it to fail fast.
	gen uint64
}

func newTable[R any](cmp quads.CompareFunc[R], quad, indexed bool, opts []Option) *table[R] {
	t := &table[R]{
		cfg:  newConfig(opts),
		cmp:  cmp,
		quad: quad,
		rows: arena.New[row](),
	}
	t.pool = newPool(t.cfg, cmp, false)
	t.primary = btree.NewG(t.cfg.degree, func(a, b rowItem) bool {
		return t.compareRows(a.r, b.r) < 0
	})
	if indexed {
		t.index()
	}
	return t
}

func (t *table[R]) collector() *annotations.Collector {
	return t.cfg.collector
}

func (t *table[R]) compareIDs(a, b ResourceID) int {
	if a == b {
		return 0
	}
	return t.cmp(t.pool.value(a), t.pool.value(b))
}

// compareRows orders rows by value. The default graph sorts first.
func (t *table[R]) compareRows(a, b row) int {
	for f := roleSubject; f < roleGraph; f++ {
		if c := t.compareIDs(a[f], b[f]); c != 0 {
			return c
		}
	}
	switch {
	case a[roleGraph] == b[roleGraph]:
		return 0
	case a[roleGraph] == noGraph:
		return -1
	case b[roleGraph] == noGraph:
		return 1
	}
	return t.compareIDs(a[roleGraph], b[roleGraph])
}

func (t *table[R]) arity() role {
	if t.quad {
		return numRoles
	}
	return roleGraph
}

// index builds posting lists and role sets for a table that only had a
// primary index. Row and resource ids are kept.
func (t *table[R]) index() {
	if t.indexed {
		return
	}
	t.indexed = true
	for ro := range t.roles {
		t.roles[ro] = newResourceTree(t.cfg.degree, t.cmp)
	}
	if t.quad {
		t.defaults = roaring.New()
	}
	t.pool.convert()
	for id := 0; id < t.rows.Cap(); id++ {
		r := t.rows.Ref(RowID(id))
		if r == nil {
			continue
		}
		t.link(RowID(id), *r)
	}
	t.gen++
}

// link registers an interned row in the secondary indexes.
func (t *table[R]) link(id RowID, r row) {
	for ro := roleSubject; ro < t.arity(); ro++ {
		if ro == roleGraph && r[ro] == noGraph {
			t.defaults.Add(id)
			continue
		}
		if t.pool.register(r[ro], ro, id) {
			t.roles[ro].ReplaceOrInsert(resItem[R]{value: t.pool.value(r[ro]), id: r[ro]})
		}
	}
}

func (t *table[R]) len() int {
	return t.primary.Len()
}

// resolve maps a quad to pool ids without interning anything.
func (t *table[R]) resolve(q quads.Quad[R]) (row, bool) {
	r := row{noGraph, noGraph, noGraph, noGraph}
	values := [numRoles]R{q.Subject, q.Predicate, q.Object, q.Graph}
	n := roleGraph
	if t.quad && q.Named {
		n = numRoles
	}
	for ro := roleSubject; ro < n; ro++ {
		id, ok := t.pool.lookup(values[ro])
		if !ok {
			return r, false
		}
		r[ro] = id
	}
	return r, true
}

func (t *table[R]) find(q quads.Quad[R]) (RowID, bool) {
	r, ok := t.resolve(q)
	if !ok {
		return 0, false
	}
	item, ok := t.primary.Get(rowItem{r: r})
	return item.id, ok
}

func (t *table[R]) contains(q quads.Quad[R]) bool {
	_, ok := t.find(q)
	return ok
}

// insert adds q. Resources are interned and posted first, then the row
// enters the primary index.
func (t *table[R]) insert(q quads.Quad[R]) bool {
	if t.contains(q) {
		return false
	}
	if !t.quad {
		q.Named = false
	}
	id := t.rows.Insert(row{})
	r := row{noGraph, noGraph, noGraph, noGraph}
	values := [numRoles]R{q.Subject, q.Predicate, q.Object, q.Graph}
	for ro := roleSubject; ro < t.arity(); ro++ {
		if ro == roleGraph && !q.Named {
			if t.indexed {
				t.defaults.Add(id)
			}
			continue
		}
		rid, first := t.pool.acquire(values[ro], ro, id)
		r[ro] = rid
		if t.indexed && first {
			t.roles[ro].ReplaceOrInsert(resItem[R]{value: values[ro], id: rid})
		}
	}
	*t.rows.Ref(id) = r
	t.primary.ReplaceOrInsert(rowItem{id: id, r: r})
	t.gen++
	return true
}

func (t *table[R]) remove(q quads.Quad[R]) bool {
	id, ok := t.find(q)
	if !ok {
		return false
	}
	t.removeRow(id)
	return true
}

// removeRow unlinks a row in reverse insert order: primary index, posting
// lists, then pool entries. Entries are evicted last because the primary
// comparator dereferences them.
func (t *table[R]) removeRow(id RowID) {
	r, _ := t.rows.Get(id)
	t.primary.Delete(rowItem{id: id, r: r})
	if t.indexed && t.quad && r[roleGraph] == noGraph {
		t.defaults.Remove(id)
	}
	for ro := roleSubject; ro < t.arity(); ro++ {
		rid := r[ro]
		if rid == noGraph {
			continue
		}
		v := t.pool.value(rid)
		emptied, _ := t.pool.release(rid, ro, id)
		if t.indexed && emptied {
			t.roles[ro].Delete(resItem[R]{value: v})
		}
	}
	t.rows.Remove(id)
	t.gen++
}

func (t *table[R]) materialize(r row) quads.Quad[R] {
	q := quads.Quad[R]{
		Subject:   t.pool.value(r[roleSubject]),
		Predicate: t.pool.value(r[rolePredicate]),
		Object:    t.pool.value(r[roleObject]),
	}
	if g := r[roleGraph]; g != noGraph {
		q.Graph = t.pool.value(g)
		q.Named = true
	}
	return q
}

// guard panics if the table changed since gen was captured.
func (t *table[R]) guard(gen uint64) {
	if t.gen != gen {
		t.collector().Add(annotations.Event{
			Name: annotations.ErrorConcurrent,
			Data: map[string]any{"error": ErrConcurrentMutation},
		})
		panic(ErrConcurrentMutation)
	}
}

// all yields every row in canonical order.
func (t *table[R]) all() iter.Seq[quads.Quad[R]] {
	return func(yield func(quads.Quad[R]) bool) {
		gen := t.gen
		t.primary.Ascend(func(item rowItem) bool {
			if !yield(t.materialize(item.r)) {
				return false
			}
			t.guard(gen)
			return true
		})
	}
}

// values yields the resources of a value-ordered tree.
func (t *table[R]) values(tree *btree.BTreeG[resItem[R]]) iter.Seq[R] {
	return func(yield func(R) bool) {
		gen := t.gen
		tree.Ascend(func(item resItem[R]) bool {
			if !yield(item.value) {
				return false
			}
			t.guard(gen)
			return true
		})
	}
}

func (t *table[R]) resources() iter.Seq[R] {
	return t.values(t.pool.index)
}

func (t *table[R]) containsResource(v R) bool {
	_, ok := t.pool.lookup(v)
	return ok
}

func (t *table[R]) clone() *table[R] {
	c := newTable(t.cmp, t.quad, t.indexed, t.cfg.options())
	t.primary.Ascend(func(item rowItem) bool {
		c.insert(t.materialize(item.r))
		return true
	})
	return c
}

// equal compares two tables as sets.
func (t *table[R]) equal(o *table[R]) bool {
	if t.len() != o.len() {
		return false
	}
	same := true
	t.primary.Ascend(func(item rowItem) bool {
		same = o.contains(t.materialize(item.r))
		return same
	})
	return same
}
