package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueRandomDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := NewUniqueRandom(rng, 100)

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		v := u.Next()
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 100)
		require.False(t, seen[v], "value %d drawn twice", v)
		seen[v] = true
	}

	assert.Equal(t, -1, u.Next())
	assert.Equal(t, -1, u.Next())
}

func TestUniqueRandomEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := NewUniqueRandom(rng, 0)

	assert.Equal(t, -1, u.Next())
}
