// Package postings provides skip-merge primitives over roaring posting lists:
// forward cursors that jump to the next id at or after a target, and a k-way
// leapfrog intersection built on them.
package postings

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Cursor walks a posting list in increasing order. It never moves backwards.
type Cursor struct {
	it roaring.IntPeekable
}

// NewCursor positions a cursor on the first id of b.
func NewCursor(b *roaring.Bitmap) *Cursor {
	return &Cursor{it: b.Iterator()}
}

// Seek returns the smallest id >= i without consuming it. It returns false
// once the list is exhausted.
func (c *Cursor) Seek(i uint32) (uint32, bool) {
	c.it.AdvanceIfNeeded(i)
	if !c.it.HasNext() {
		return 0, false
	}
	return c.it.PeekNext(), true
}

// Verdict is the outcome of checking a candidate id against a cursor.
type Verdict uint8

const (
	// Pass means the candidate is in the list.
	Pass Verdict = iota
	// Skip means the candidate is absent; retry from the returned id.
	Skip
	// Exhausted means no id at or after the candidate exists.
	Exhausted
)

// Check tests whether i is in the list. On Skip the returned id is the next
// candidate worth trying.
func (c *Cursor) Check(i uint32) (uint32, Verdict) {
	j, ok := c.Seek(i)
	switch {
	case !ok:
		return 0, Exhausted
	case j == i:
		return i, Pass
	default:
		return j, Skip
	}
}

// Intersect yields, in increasing order, the ids present in every cursor.
// With no cursors it yields nothing.
func Intersect(cursors ...*Cursor) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if len(cursors) == 0 {
			return
		}
		var i uint32
		for {
			agreed := true
			for _, c := range cursors {
				j, v := c.Check(i)
				if v == Exhausted {
					return
				}
				if v == Skip {
					i = j
					agreed = false
					break
				}
			}
			if !agreed {
				continue
			}
			if !yield(i) || i == math.MaxUint32 {
				return
			}
			i++
		}
	}
}

// IntersectionCount returns the number of ids shared by every list.
func IntersectionCount(lists ...*roaring.Bitmap) uint64 {
	switch len(lists) {
	case 0:
		return 0
	case 1:
		return lists[0].GetCardinality()
	case 2:
		return lists[0].AndCardinality(lists[1])
	default:
		return roaring.FastAnd(lists...).GetCardinality()
	}
}
