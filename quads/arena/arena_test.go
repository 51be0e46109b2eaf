package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaReusesFreedSlots(t *testing.T) {
	a := New[string]()

	x := a.Insert("x")
	y := a.Insert("y")
	z := a.Insert("z")
	assert.Equal(t, []ID{0, 1, 2}, []ID{x, y, z})
	assert.Equal(t, 3, a.Len())

	v, ok := a.Remove(y)
	require.True(t, ok)
	assert.Equal(t, "y", v)
	assert.False(t, a.Occupied(y))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, a.Cap())

	_, ok = a.Remove(y)
	assert.False(t, ok, "double remove must be a no-op")

	w := a.Insert("w")
	assert.Equal(t, y, w, "freed slot is recycled")
	got, ok := a.Get(w)
	require.True(t, ok)
	assert.Equal(t, "w", got)
	assert.Equal(t, 3, a.Cap())
}

func TestArenaVacantAccess(t *testing.T) {
	a := New[int]()
	_, ok := a.Get(7)
	assert.False(t, ok)
	assert.Nil(t, a.Ref(7))

	id := a.Insert(42)
	*a.Ref(id) = 43
	v, _ := a.Get(id)
	assert.Equal(t, 43, v)

	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, a.Cap())
	assert.Equal(t, ID(0), a.Insert(1))
}
