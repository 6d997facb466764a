package join

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joinengine/pkg/operator"
	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

func scanOf(b query.Binding, cols ...[]uint64) *operator.Scan {
	var size uint64
	if len(cols) > 0 {
		size = uint64(len(cols[0]))
	}
	rel := &relation.Relation{Size: size, Columns: cols, Owned: true}
	return operator.NewScan(rel, b)
}

func TestJoinProducesMatchingRows(t *testing.T) {
	// left: binding 0, columns [id, val] = [(1,10),(2,20),(3,30)]
	left := scanOf(0, []uint64{1, 2, 3}, []uint64{10, 20, 30})
	// right: binding 1, columns [id, tag] = [(2,200),(3,300),(3,301)]
	right := operator.NewScan(&relation.Relation{Size: 3, Columns: [][]uint64{{2, 3, 3}, {200, 300, 301}}, Owned: true}, 1)

	pred := query.PredicateInfo{
		Left:  query.SelectInfo{Binding: 0, Column: 0},
		Right: query.SelectInfo{Binding: 1, Column: 0},
	}
	j := New(left, right, pred, DefaultCapacityMultiplier)

	valSel := query.SelectInfo{Binding: 0, Column: 1}
	tagSel := query.SelectInfo{Binding: 1, Column: 1}
	require.True(t, j.Require(valSel))
	require.True(t, j.Require(tagSel))
	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, uint64(3), j.ResultSize())

	valIdx, ok := j.Resolve(valSel)
	require.True(t, ok)
	tagIdx, ok := j.Resolve(tagSel)
	require.True(t, ok)

	vals := j.Results()[valIdx].Values
	tags := j.Results()[tagIdx].Values

	got := make(map[[2]uint64]bool)
	for i := range vals {
		got[[2]uint64{vals[i], tags[i]}] = true
	}
	assert.True(t, got[[2]uint64{20, 200}])
	assert.True(t, got[[2]uint64{30, 300}])
	assert.True(t, got[[2]uint64{30, 301}])
}

func TestJoinRequireFailsForUnknownBinding(t *testing.T) {
	left := scanOf(0, []uint64{1})
	right := scanOf(1, []uint64{1})
	pred := query.PredicateInfo{
		Left:  query.SelectInfo{Binding: 0, Column: 0},
		Right: query.SelectInfo{Binding: 1, Column: 0},
	}
	j := New(left, right, pred, DefaultCapacityMultiplier)
	assert.False(t, j.Require(query.SelectInfo{Binding: 9, Column: 0}))
}

func TestJoinNoMatchesYieldsZeroRows(t *testing.T) {
	left := scanOf(0, []uint64{1, 2})
	right := scanOf(1, []uint64{5, 6})
	pred := query.PredicateInfo{
		Left:  query.SelectInfo{Binding: 0, Column: 0},
		Right: query.SelectInfo{Binding: 1, Column: 0},
	}
	j := New(left, right, pred, DefaultCapacityMultiplier)
	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, uint64(0), j.ResultSize())
}
