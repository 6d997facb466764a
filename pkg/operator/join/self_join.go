package join

import (
	"context"

	"joinengine/pkg/dberror"
	"joinengine/pkg/operator"
	"joinengine/pkg/query"
)

// SelfJoin filters a single child's output to rows where two of its
// columns are equal (spec §4.5): the planner's answer to a predicate
// whose both bindings are already part of the tree (a cyclic or
// redundant predicate).
type SelfJoin struct {
	child     operator.Operator
	predicate query.PredicateInfo
	resolved  map[query.Key]int
	required  []query.SelectInfo
	columns   []operator.Column
	size      uint64
}

// NewSelfJoin builds a SelfJoin over child with predicate, whose two
// SelectInfos must both be reachable from child.
func NewSelfJoin(child operator.Operator, predicate query.PredicateInfo) *SelfJoin {
	return &SelfJoin{child: child, predicate: predicate, resolved: make(map[query.Key]int)}
}

// Require forwards to the child; on success allocates an owned output
// column. The predicate's own two columns are not automatically added
// to the output (spec §4.5).
func (s *SelfJoin) Require(sel query.SelectInfo) bool {
	k := sel.Key()
	if _, ok := s.resolved[k]; ok {
		return true
	}
	if !s.child.Require(sel) {
		return false
	}
	idx := len(s.required)
	s.required = append(s.required, sel)
	s.resolved[k] = idx
	return true
}

// Run ensures the two predicate columns are required on the child,
// runs it, then copies every required output column at each row where
// the predicate holds.
func (s *SelfJoin) Run(ctx context.Context) error {
	if !s.child.Require(s.predicate.Left) {
		return dberror.Newf(dberror.CategoryPlanner, "join.SelfJoin", "left predicate column unreachable",
			"binding=%d column=%d", s.predicate.Left.Binding, s.predicate.Left.Column)
	}
	if !s.child.Require(s.predicate.Right) {
		return dberror.Newf(dberror.CategoryPlanner, "join.SelfJoin", "right predicate column unreachable",
			"binding=%d column=%d", s.predicate.Right.Binding, s.predicate.Right.Column)
	}
	if err := s.child.Run(ctx); err != nil {
		return err
	}

	leftIdx, ok := s.child.Resolve(s.predicate.Left)
	if !ok {
		return dberror.New(dberror.CategoryPlanner, "join.SelfJoin", "left predicate column not resolvable after run")
	}
	rightIdx, ok := s.child.Resolve(s.predicate.Right)
	if !ok {
		return dberror.New(dberror.CategoryPlanner, "join.SelfJoin", "right predicate column not resolvable after run")
	}
	leftCol := s.child.Results()[leftIdx].Values
	rightCol := s.child.Results()[rightIdx].Values

	srcCols, err := resolveColumns(s.child, s.required)
	if err != nil {
		return err
	}

	outCols := make([]operator.Column, len(s.required))
	for i := range outCols {
		outCols[i] = operator.Column{Owned: true}
	}

	for row := uint64(0); row < s.child.ResultSize(); row++ {
		if leftCol[row] != rightCol[row] {
			continue
		}
		for ci, col := range srcCols {
			outCols[ci].Values = append(outCols[ci].Values, col[row])
		}
		s.size++
	}

	s.columns = outCols
	return nil
}

func (s *SelfJoin) Resolve(sel query.SelectInfo) (int, bool) {
	idx, ok := s.resolved[sel.Key()]
	return idx, ok
}

func (s *SelfJoin) Results() []operator.Column { return s.columns }
func (s *SelfJoin) ResultSize() uint64         { return s.size }
