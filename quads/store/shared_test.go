package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/pattern"
)

func TestSharedReadersAndWriter(t *testing.T) {
	s := NewShared(NewIndexedDataset(quads.Ordered[int]()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			err := s.Update(func(d *IndexedDataset[int]) error {
				d.Insert(nq(i, i%7, i%5, i%3))
				return nil
			})
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				err := s.View(func(d *IndexedDataset[int]) error {
					n := 0
					for range d.PatternMatching(pattern.AnyQuad[int]()) {
						n++
					}
					if n != d.Len() {
						return errors.New("match count disagrees with Len")
					}
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.View(func(d *IndexedDataset[int]) error {
		assert.Equal(t, 200, d.Len())
		return nil
	}))
}

func TestSharedPropagatesErrors(t *testing.T) {
	s := NewShared(NewIndexedGraph(quads.Ordered[int]()))
	boom := errors.New("boom")
	assert.ErrorIs(t, s.Update(func(*IndexedGraph[int]) error { return boom }), boom)
	assert.ErrorIs(t, s.View(func(*IndexedGraph[int]) error { return boom }), boom)

	prev := s.Swap(NewIndexedGraph(quads.Ordered[int]()))
	assert.NotNil(t, prev)
}
