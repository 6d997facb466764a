package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joinengine/pkg/query"
)

func TestFilterScanKeepsPassingRows(t *testing.T) {
	rel := newTestRelation(
		[]uint64{1, 2, 3, 4, 5},
		[]uint64{10, 20, 30, 40, 50},
	)
	filters := []query.FilterInfo{{Select: query.SelectInfo{Binding: 0, Column: 0}, Op: query.Greater, Value: 2}}
	f := NewFilterScan(rel, 0, filters)

	sel := query.SelectInfo{Binding: 0, Column: 1}
	require.True(t, f.Require(sel))
	require.NoError(t, f.Run(context.Background()))

	assert.Equal(t, uint64(3), f.ResultSize())
	idx, ok := f.Resolve(sel)
	require.True(t, ok)
	assert.Equal(t, []uint64{30, 40, 50}, f.Results()[idx].Values)
	assert.True(t, f.Results()[idx].Owned)
}

func TestFilterScanRunsWithNoRequiredColumns(t *testing.T) {
	rel := newTestRelation([]uint64{1, 2, 3})
	filters := []query.FilterInfo{{Select: query.SelectInfo{Binding: 0, Column: 0}, Op: query.Less, Value: 3}}
	f := NewFilterScan(rel, 0, filters)

	require.NoError(t, f.Run(context.Background()))
	assert.Equal(t, uint64(2), f.ResultSize())
	assert.Empty(t, f.Results())
}

func TestFilterScanContradictoryFiltersYieldZeroRows(t *testing.T) {
	rel := newTestRelation([]uint64{1, 2, 3})
	filters := []query.FilterInfo{
		{Select: query.SelectInfo{Binding: 0, Column: 0}, Op: query.Less, Value: 2},
		{Select: query.SelectInfo{Binding: 0, Column: 0}, Op: query.Greater, Value: 5},
	}
	f := NewFilterScan(rel, 0, filters)
	require.NoError(t, f.Run(context.Background()))
	assert.Equal(t, uint64(0), f.ResultSize())
}
