package store

import (
	"iter"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/pattern"
	"github.com/wbrown/janus-quads/quads/postings"
)

// sameAs requires r[field] == r[target]. Equal values share a pool id, so
// the check never touches the values themselves.
type sameAs struct {
	field, target role
}

// plan is a compiled pattern bound to one table: the posting lists of Given
// fields in field order plus the reflexive checks.
type plan struct {
	empty bool
	fixed []*roaring.Bitmap
	same  []sameAs
}

func (t *table[R]) plan(p pattern.CanonicalQuad[R]) plan {
	var pl plan
	for ro := roleSubject; ro < t.arity(); ro++ {
		term := p.Term(pattern.Field(ro))
		switch term.Kind() {
		case pattern.Any:
		case pattern.Given:
			v, _ := term.Value()
			id, ok := t.pool.lookup(v)
			if !ok {
				return plan{empty: true}
			}
			list := t.pool.postings(id, ro)
			if list == nil || list.IsEmpty() {
				return plan{empty: true}
			}
			pl.fixed = append(pl.fixed, list)
		case pattern.Default:
			if t.defaults.IsEmpty() {
				return plan{empty: true}
			}
			pl.fixed = append(pl.fixed, t.defaults)
		default:
			target, _ := term.Target()
			pl.same = append(pl.same, sameAs{field: ro, target: role(target)})
		}
	}
	return pl
}

func (pl plan) accepts(r row) bool {
	for _, s := range pl.same {
		if r[s.field] == noGraph || r[s.field] != r[s.target] {
			return false
		}
	}
	return true
}

// matchStats counts the work done by one match for annotations.
type matchStats struct {
	probed  int
	matched int
}

// scan calls fn with every row matching p in increasing row id order, until
// fn returns false.
//
// Indexed tables leapfrog over the posting lists of the Given fields and
// test reflexive fields directly on each candidate row. Without posting
// lists to intersect every occupied slot is a candidate.
func (t *table[R]) scan(p pattern.CanonicalQuad[R], stats *matchStats, fn func(RowID, row) bool) {
	if !t.indexed {
		t.filter(p, stats, fn)
		return
	}
	pl := t.plan(p)
	if pl.empty {
		return
	}
	probe := func(id RowID) bool {
		ref := t.rows.Ref(id)
		if ref == nil {
			return true
		}
		stats.probed++
		r := *ref
		if !pl.accepts(r) {
			return true
		}
		stats.matched++
		return fn(id, r)
	}
	if len(pl.fixed) == 0 {
		for i := 0; i < t.rows.Cap(); i++ {
			if !probe(RowID(i)) {
				return
			}
		}
		return
	}
	cursors := make([]*postings.Cursor, len(pl.fixed))
	for i, list := range pl.fixed {
		cursors[i] = postings.NewCursor(list)
	}
	for id := range postings.Intersect(cursors...) {
		if !probe(id) {
			return
		}
	}
}

// filter is the plain-table fallback: a canonical-order pass over the
// primary index testing each row against the pattern.
func (t *table[R]) filter(p pattern.CanonicalQuad[R], stats *matchStats, fn func(RowID, row) bool) {
	t.primary.Ascend(func(item rowItem) bool {
		stats.probed++
		if !p.Matches(t.cmp, t.materialize(item.r)) {
			return true
		}
		stats.matched++
		return fn(item.id, item.r)
	})
}

func (t *table[R]) annotate(name string, start time.Time, p pattern.CanonicalQuad[R], stats matchStats) {
	c := t.collector()
	if !c.Enabled() {
		return
	}
	data := map[string]any{
		"pattern":     t.describe(p),
		"match.count": stats.matched,
	}
	switch name {
	case annotations.PatternMatch:
		data["rows.probed"] = stats.probed
		data["rows.rejected"] = stats.probed - stats.matched
	case annotations.PatternExtract:
		data["extract.count"] = stats.matched
	}
	c.AddTiming(name, start, data)
}

func (t *table[R]) describe(p pattern.CanonicalQuad[R]) string {
	if t.quad {
		return p.String()
	}
	tp, _ := p.Split()
	return tp.String()
}

// match lazily yields the rows matching p.
func (t *table[R]) match(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return func(yield func(quads.Quad[R]) bool) {
		start := time.Now()
		gen := t.gen
		var stats matchStats
		t.scan(p, &stats, func(_ RowID, r row) bool {
			if !yield(t.materialize(r)) {
				return false
			}
			t.guard(gen)
			return true
		})
		t.annotate(annotations.PatternMatch, start, p, stats)
	}
}

// extract removes and yields the rows matching p. Matching ids are collected
// before the first removal, since removal rewrites the posting lists being
// intersected. Rows not yet yielded when the consumer stops stay in place.
func (t *table[R]) extract(p pattern.CanonicalQuad[R]) iter.Seq[quads.Quad[R]] {
	return func(yield func(quads.Quad[R]) bool) {
		start := time.Now()
		var (
			ids   []RowID
			stats matchStats
		)
		t.scan(p, &stats, func(id RowID, _ row) bool {
			ids = append(ids, id)
			return true
		})
		var removed matchStats
		defer func() { t.annotate(annotations.PatternExtract, start, p, removed) }()
		for _, id := range ids {
			r, _ := t.rows.Get(id)
			q := t.materialize(r)
			t.removeRow(id)
			removed.matched++
			gen := t.gen
			if !yield(q) {
				return
			}
			t.guard(gen)
		}
	}
}

// count returns the number of rows matching p. Patterns without reflexive
// fields are answered from posting list cardinalities alone.
func (t *table[R]) count(p pattern.CanonicalQuad[R]) int {
	start := time.Now()
	var stats matchStats
	pl := plan{}
	if t.indexed {
		pl = t.plan(p)
	}
	switch {
	case t.indexed && pl.empty:
	case t.indexed && len(pl.same) == 0 && len(pl.fixed) == 0:
		stats.matched = t.len()
	case t.indexed && len(pl.same) == 0:
		stats.matched = int(postings.IntersectionCount(pl.fixed...))
	default:
		t.scan(p, &stats, func(RowID, row) bool { return true })
	}
	if c := t.collector(); c.Enabled() {
		c.AddTiming(annotations.PatternCount, start, map[string]any{
			"pattern":     t.describe(p),
			"match.count": stats.matched,
		})
	}
	return stats.matched
}

// removeGraph detaches the default graph (label nil) or a named graph and
// returns its triples as a plain triple table. A named graph that has no
// rows does not exist.
func (t *table[R]) removeGraph(label *R) (*table[R], bool) {
	start := time.Now()
	sel := pattern.DefaultGraph[R]()
	if label != nil {
		sel = pattern.NamedGraph(*label)
	}
	var (
		ids   []RowID
		stats matchStats
	)
	t.scan(pattern.AnyTriple[R]().WithGraph(sel), &stats, func(id RowID, _ row) bool {
		ids = append(ids, id)
		return true
	})
	if label != nil && len(ids) == 0 {
		return nil, false
	}
	out := newTable(t.cmp, false, false, t.cfg.options())
	for _, id := range ids {
		r, _ := t.rows.Get(id)
		q := t.materialize(r)
		t.removeRow(id)
		out.insert(q.Triple().InDefaultGraph())
	}
	if c := t.collector(); c.Enabled() {
		var name any = ":default"
		if label != nil {
			name = *label
		}
		c.AddTiming(annotations.GraphRemoved, start, map[string]any{
			"graph":        name,
			"triple.count": out.len(),
		})
	}
	return out, true
}
