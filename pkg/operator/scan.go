package operator

import (
	"context"

	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

// Scan is a leaf operator over a Relation bound as binding. It
// exposes borrowed handles directly into relation storage — zero-copy
// (spec §4.2).
type Scan struct {
	rel      *relation.Relation
	binding  query.Binding
	resolved map[query.Key]int
	columns  []Column
	size     uint64
}

// NewScan constructs a Scan over rel bound as b.
func NewScan(rel *relation.Relation, b query.Binding) *Scan {
	return &Scan{rel: rel, binding: b, resolved: make(map[query.Key]int)}
}

// Require accepts s iff s.Binding == the Scan's binding. A column_id
// past the relation's column count is a precondition violation and
// panics via the natural out-of-range slice index, per spec §4.2.
func (s *Scan) Require(sel query.SelectInfo) bool {
	if sel.Binding != s.binding {
		return false
	}
	k := sel.Key()
	if _, ok := s.resolved[k]; ok {
		return true
	}
	idx := len(s.columns)
	s.columns = append(s.columns, Column{Values: s.rel.Columns[sel.Column], Owned: false})
	s.resolved[k] = idx
	return true
}

// Run sets ResultSize to the relation's row count. There is no other
// work: every required column already aliases relation storage.
func (s *Scan) Run(context.Context) error {
	s.size = s.rel.Size
	return nil
}

func (s *Scan) Resolve(sel query.SelectInfo) (int, bool) {
	idx, ok := s.resolved[sel.Key()]
	return idx, ok
}

func (s *Scan) Results() []Column   { return s.columns }
func (s *Scan) ResultSize() uint64  { return s.size }
func (s *Scan) Binding() query.Binding { return s.binding }
