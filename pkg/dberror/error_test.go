package dberror

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSetsCodeFromCategory(t *testing.T) {
	err := New(CategoryParse, "query.Parse", "missing '|' separator")
	assert.Equal(t, "PARSE_ERROR", err.Code)
	assert.Equal(t, CategoryParse, err.Category)
	assert.True(t, strings.HasPrefix(err.Error(), "[PARSE_ERROR] query.Parse:"))
}

func TestNewfSetsCodeAndDetail(t *testing.T) {
	err := Newf(CategoryColumn, "relation.Resolve", "column out of range", "column_id=%d k=%d", 5, 3)
	assert.Equal(t, "COLUMN_ERROR", err.Code)
	assert.Equal(t, "column_id=5 k=3", err.Detail)
	assert.Contains(t, err.Error(), "(column_id=5 k=3)")
}

func TestWrapSetsCodeAndPreservesCause(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := Wrap(cause, CategoryLoad, "relation.Load", "cannot open relation file")
	assert.Error(t, wrapped)

	var engErr *EngineError
	assert.True(t, errors.As(Cause(wrapped), &engErr))
	assert.Equal(t, "LOAD_ERROR", engErr.Code)
	assert.Equal(t, cause.Error(), engErr.Detail)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CategoryPlanner, "planner.Build", "unreachable"))
}
