package term

import (
	"fmt"
	"sync"

	"github.com/wbrown/janus-quads/quads"
)

// Vocabulary maps terms to the resource values of a store and back.
type Vocabulary[R any] interface {
	// Resource returns the resource for t, creating it if needed.
	Resource(t Term) R
	// Lookup returns the resource for t only if it already exists.
	Lookup(t Term) (R, bool)
	// Term returns the term a resource stands for.
	Term(r R) (Term, bool)
	// Compare orders resources.
	Compare(a, b R) int
}

// NoVocabulary is the identity vocabulary: every term is its own resource.
// It has no state, so the zero value is ready to use.
type NoVocabulary struct{}

var _ Vocabulary[Term] = NoVocabulary{}

func (NoVocabulary) Resource(t Term) Term       { return t }
func (NoVocabulary) Lookup(t Term) (Term, bool) { return t, true }
func (NoVocabulary) Term(r Term) (Term, bool)   { return r, true }
func (NoVocabulary) Compare(a, b Term) int      { return Compare(a, b) }

// ID is a dense term identifier assigned by a Dictionary.
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("#%d", uint32(id))
}

// Dictionary interns terms to IDs in first-seen order. Lookups of known
// terms are lock-free; it is safe for concurrent use.
type Dictionary struct {
	ids   sync.Map // map[Term]ID
	mu    sync.RWMutex
	terms []Term
}

var _ Vocabulary[ID] = (*Dictionary)(nil)

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// Resource returns the id of t, assigning the next id if t is new.
func (d *Dictionary) Resource(t Term) ID {
	// Fast path: load existing (lock-free)
	if id, ok := d.ids.Load(t); ok {
		return id.(ID)
	}

	// Slow path: assign under the lock so ids stay dense
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.ids.Load(t); ok {
		return id.(ID)
	}
	id := ID(len(d.terms))
	d.terms = append(d.terms, t)
	d.ids.Store(t, id)
	return id
}

// Lookup returns the id of t without assigning one.
func (d *Dictionary) Lookup(t Term) (ID, bool) {
	id, ok := d.ids.Load(t)
	if !ok {
		return 0, false
	}
	return id.(ID), true
}

// Term returns the term with the given id.
func (d *Dictionary) Term(id ID) (Term, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(id) >= len(d.terms) {
		return Term{}, false
	}
	return d.terms[id], true
}

// Compare orders ids numerically, which is first-seen order of terms.
func (d *Dictionary) Compare(a, b ID) int {
	return quads.Ordered[ID]()(a, b)
}

// Len returns the number of interned terms.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.terms)
}

// Quad converts a quad of terms into a quad of resources.
func Quad[R any](v Vocabulary[R], q quads.Quad[Term]) quads.Quad[R] {
	out := quads.NewQuad(v.Resource(q.Subject), v.Resource(q.Predicate), v.Resource(q.Object))
	if q.Named {
		out.Graph = v.Resource(q.Graph)
		out.Named = true
	}
	return out
}

// Terms converts a quad of resources back into terms. It fails if a
// resource is unknown to the vocabulary.
func Terms[R any](v Vocabulary[R], q quads.Quad[R]) (quads.Quad[Term], error) {
	var err error
	lookup := func(r R) Term {
		t, ok := v.Term(r)
		if !ok && err == nil {
			err = fmt.Errorf("term: resource %v is not in the vocabulary", r)
		}
		return t
	}
	out := quads.NewQuad(lookup(q.Subject), lookup(q.Predicate), lookup(q.Object))
	if q.Named {
		out.Graph = lookup(q.Graph)
		out.Named = true
	}
	return out, err
}
