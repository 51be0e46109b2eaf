package store

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/arena"
)

// ResourceID is the pool slot of a distinct resource value.
type ResourceID = arena.ID

// RowID is the arena slot of a stored row.
type RowID = arena.ID

// role is the structural position a resource occupies in a row.
type role uint8

const (
	roleSubject role = iota
	rolePredicate
	roleObject
	roleGraph
	numRoles
)

// entry is one distinct resource. Indexed pools keep a posting list per
// role; plain pools only count occurrences.
type entry[R any] struct {
	value    R
	postings [numRoles]*roaring.Bitmap
	count    uint32
}

func (e *entry[R]) live() bool {
	if e.count > 0 {
		return true
	}
	for _, p := range e.postings {
		if p != nil && !p.IsEmpty() {
			return true
		}
	}
	return false
}

// resItem orders resource ids by value inside B-trees. It carries a copy of
// the value so lookups never touch the pool.
type resItem[R any] struct {
	value R
	id    ResourceID
}

func newResourceTree[R any](degree int, cmp quads.CompareFunc[R]) *btree.BTreeG[resItem[R]] {
	return btree.NewG(degree, func(a, b resItem[R]) bool {
		return cmp(a.value, b.value) < 0
	})
}

// pool interns resource values. An entry exists iff some row references it.
type pool[R any] struct {
	indexed bool
	entries *arena.Arena[entry[R]]
	index   *btree.BTreeG[resItem[R]]
}

func newPool[R any](cfg config, cmp quads.CompareFunc[R], indexed bool) *pool[R] {
	return &pool[R]{
		indexed: indexed,
		entries: arena.New[entry[R]](),
		index:   newResourceTree(cfg.degree, cmp),
	}
}

// lookup finds the id of v without inserting it.
func (p *pool[R]) lookup(v R) (ResourceID, bool) {
	item, ok := p.index.Get(resItem[R]{value: v})
	return item.id, ok
}

func (p *pool[R]) value(id ResourceID) R {
	return p.entries.Ref(id).value
}

// postings returns the posting list of id in role, or nil if it is empty.
func (p *pool[R]) postings(id ResourceID, ro role) *roaring.Bitmap {
	e := p.entries.Ref(id)
	if e == nil {
		return nil
	}
	return e.postings[ro]
}

// acquire interns v and records that row references it in role. It reports
// whether row is the first reference of v in that role.
func (p *pool[R]) acquire(v R, ro role, row RowID) (ResourceID, bool) {
	id, ok := p.lookup(v)
	if !ok {
		id = p.entries.Insert(entry[R]{value: v})
		p.index.ReplaceOrInsert(resItem[R]{value: v, id: id})
	}
	e := p.entries.Ref(id)
	if !p.indexed {
		e.count++
		return id, !ok
	}
	if e.postings[ro] == nil {
		e.postings[ro] = roaring.New()
	}
	first := e.postings[ro].IsEmpty()
	e.postings[ro].Add(row)
	return id, first
}

// release drops the reference of row to id in role. It reports whether the
// role posting list became empty and whether the entry was evicted.
func (p *pool[R]) release(id ResourceID, ro role, row RowID) (emptied, evicted bool) {
	e := p.entries.Ref(id)
	if p.indexed {
		if list := e.postings[ro]; list != nil {
			list.Remove(row)
			emptied = list.IsEmpty()
		}
	} else {
		e.count--
		emptied = e.count == 0
	}
	if e.live() {
		return emptied, false
	}
	p.index.Delete(resItem[R]{value: e.value})
	p.entries.Remove(id)
	return emptied, true
}

// convert switches a counting pool to an indexed one. Posting lists start
// empty; the caller re-registers every row.
func (p *pool[R]) convert() {
	p.indexed = true
	for id := 0; id < p.entries.Cap(); id++ {
		if e := p.entries.Ref(ResourceID(id)); e != nil {
			e.count = 0
		}
	}
}

// register records a reference without interning; convert uses it to rebuild
// posting lists for rows that already hold ids.
func (p *pool[R]) register(id ResourceID, ro role, row RowID) bool {
	e := p.entries.Ref(id)
	if e.postings[ro] == nil {
		e.postings[ro] = roaring.New()
	}
	first := e.postings[ro].IsEmpty()
	e.postings[ro].Add(row)
	return first
}

func (p *pool[R]) len() int {
	return p.index.Len()
}
