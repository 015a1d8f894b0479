package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapEmpty(t *testing.T) {
	h := NewMinHeap[string](4)

	assert.Zero(t, h.Len())
	_, ok := h.PopMin()
	assert.False(t, ok)
}

func TestMinHeapOrder(t *testing.T) {
	h := NewMinHeap[int](0)

	keys := []float32{5, 1, 4, 1.5, 3, 2, 0.5}
	for i, k := range keys {
		h.Insert(Branch[int]{Node: i, Key: k})
	}
	require.Equal(t, len(keys), h.Len())

	var popped []float32
	for {
		b, ok := h.PopMin()
		if !ok {
			break
		}
		popped = append(popped, b.Key)
	}

	require.Len(t, popped, len(keys))
	assert.True(t, sort.SliceIsSorted(popped, func(i, j int) bool {
		return popped[i] < popped[j]
	}))
}

func TestMinHeapRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := NewMinHeap[int](128)

	for i := 0; i < 1000; i++ {
		h.Insert(Branch[int]{Node: i, Key: rng.Float32()})
	}

	prev := float32(-1)
	for {
		b, ok := h.PopMin()
		if !ok {
			break
		}
		assert.GreaterOrEqual(t, b.Key, prev)
		prev = b.Key
	}
}

func TestMinHeapReset(t *testing.T) {
	h := NewMinHeap[int](4)
	h.Insert(Branch[int]{Node: 1, Key: 1})
	h.Reset()

	assert.Zero(t, h.Len())
}
