package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

func newTestRelation(cols ...[]uint64) *relation.Relation {
	var size uint64
	if len(cols) > 0 {
		size = uint64(len(cols[0]))
	}
	return &relation.Relation{Size: size, Columns: cols, Owned: true}
}

func TestScanAliasesRelationStorage(t *testing.T) {
	rel := newTestRelation([]uint64{10, 20, 30})
	s := NewScan(rel, 0)

	sel := query.SelectInfo{Binding: 0, Column: 0}
	require.True(t, s.Require(sel))
	require.NoError(t, s.Run(context.Background()))

	idx, ok := s.Resolve(sel)
	require.True(t, ok)
	assert.Equal(t, uint64(3), s.ResultSize())
	assert.Equal(t, []uint64{10, 20, 30}, s.Results()[idx].Values)
	assert.False(t, s.Results()[idx].Owned)
}

func TestScanRejectsWrongBinding(t *testing.T) {
	rel := newTestRelation([]uint64{1})
	s := NewScan(rel, 0)
	assert.False(t, s.Require(query.SelectInfo{Binding: 1, Column: 0}))
}

func TestScanRequireIsIdempotent(t *testing.T) {
	rel := newTestRelation([]uint64{1, 2})
	s := NewScan(rel, 0)
	sel := query.SelectInfo{Binding: 0, Column: 0}
	require.True(t, s.Require(sel))
	require.True(t, s.Require(sel))
	assert.Len(t, s.Results(), 1)
}
