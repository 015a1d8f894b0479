package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKNNResultSetFills(t *testing.T) {
	rs := NewKNNResultSet(3)

	assert.False(t, rs.Full())
	assert.EqualValues(t, math.MaxFloat32, rs.WorstDist())

	rs.AddPoint(2, 10)
	rs.AddPoint(1, 11)
	assert.False(t, rs.Full())

	rs.AddPoint(3, 12)
	assert.True(t, rs.Full())
	assert.EqualValues(t, 3, rs.WorstDist())

	results := rs.Results()
	require.Len(t, results, 3)
	assert.Equal(t, Result{ID: 11, Distance: 1}, results[0])
	assert.Equal(t, Result{ID: 10, Distance: 2}, results[1])
	assert.Equal(t, Result{ID: 12, Distance: 3}, results[2])
}

func TestKNNResultSetEvictsWorst(t *testing.T) {
	rs := NewKNNResultSet(2)

	rs.AddPoint(5, 1)
	rs.AddPoint(4, 2)
	rs.AddPoint(3, 3)

	results := rs.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].ID)
	assert.Equal(t, 2, results[1].ID)
	assert.EqualValues(t, 4, rs.WorstDist())
}

func TestKNNResultSetIgnoresWorse(t *testing.T) {
	rs := NewKNNResultSet(2)

	rs.AddPoint(1, 1)
	rs.AddPoint(2, 2)
	rs.AddPoint(9, 3)

	results := rs.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, 2, results[1].ID)
}

func TestKNNResultSetTiesKeepInsertionOrder(t *testing.T) {
	rs := NewKNNResultSet(4)

	rs.AddPoint(1, 10)
	rs.AddPoint(1, 11)
	rs.AddPoint(0.5, 12)
	rs.AddPoint(1, 13)

	results := rs.Results()
	require.Len(t, results, 4)
	assert.Equal(t, 12, results[0].ID)
	assert.Equal(t, 10, results[1].ID)
	assert.Equal(t, 11, results[2].ID)
	assert.Equal(t, 13, results[3].ID)
}

func TestKNNResultSetReset(t *testing.T) {
	rs := NewKNNResultSet(2)
	rs.AddPoint(1, 1)
	rs.Reset()

	assert.Zero(t, rs.Len())
	assert.False(t, rs.Full())
	assert.EqualValues(t, math.MaxFloat32, rs.WorstDist())
}
