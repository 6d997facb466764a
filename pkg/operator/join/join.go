// Package join implements the two join operators of the execution
// tree — the build/probe hash equi-Join and the intra-operator
// SelfJoin — grounded on the same build-then-probe hash join shape
// this codebase already uses for row-oriented joins, generalized here
// to the column-at-a-time materialization discipline.
package join

import (
	"context"

	"joinengine/pkg/dberror"
	"joinengine/pkg/operator"
	"joinengine/pkg/query"
)

// DefaultCapacityMultiplier is the reserved-capacity factor applied to
// the build side's row count when sizing the hash multimap (spec
// §4.4 step 4, §5 "Memory").
const DefaultCapacityMultiplier = 2

// Join is the hash equi-join operator (spec §4.4). Children are
// already-constructed operators; Predicate names the equi-join
// condition connecting them.
type Join struct {
	left, right    operator.Operator
	predicate      query.PredicateInfo
	requestedLeft  []query.SelectInfo
	requestedRight []query.SelectInfo
	seen           map[query.Key]struct{}
	resolved       map[query.Key]int
	columns        []operator.Column
	size           uint64
	capacityMult   int
}

// New constructs a Join over left/right with the given predicate. A
// non-positive capacityMultiplier falls back to DefaultCapacityMultiplier.
func New(left, right operator.Operator, predicate query.PredicateInfo, capacityMultiplier int) *Join {
	if capacityMultiplier <= 0 {
		capacityMultiplier = DefaultCapacityMultiplier
	}
	return &Join{
		left:         left,
		right:        right,
		predicate:    predicate,
		seen:         make(map[query.Key]struct{}),
		resolved:     make(map[query.Key]int),
		capacityMult: capacityMultiplier,
	}
}

// Require tries left then right, in that order; the winning side's
// request is recorded so Run can allocate an output column for it.
func (j *Join) Require(sel query.SelectInfo) bool {
	k := sel.Key()
	if _, ok := j.seen[k]; ok {
		return true
	}
	if j.left.Require(sel) {
		j.seen[k] = struct{}{}
		j.requestedLeft = append(j.requestedLeft, sel)
		return true
	}
	if j.right.Require(sel) {
		j.seen[k] = struct{}{}
		j.requestedRight = append(j.requestedRight, sel)
		return true
	}
	return false
}

// Run builds a hash multimap on the smaller side and probes it with
// the larger side, per spec §4.4 steps 1-5.
func (j *Join) Run(ctx context.Context) error {
	left, right := j.left, j.right
	pred := j.predicate
	reqLeft, reqRight := j.requestedLeft, j.requestedRight

	if !left.Require(pred.Left) {
		return dberror.Newf(dberror.CategoryPlanner, "join.Join", "join key column unreachable from left child",
			"binding=%d column=%d", pred.Left.Binding, pred.Left.Column)
	}
	if !right.Require(pred.Right) {
		return dberror.Newf(dberror.CategoryPlanner, "join.Join", "join key column unreachable from right child",
			"binding=%d column=%d", pred.Right.Binding, pred.Right.Column)
	}
	if err := left.Run(ctx); err != nil {
		return err
	}
	if err := right.Run(ctx); err != nil {
		return err
	}

	// Smaller-side-builds heuristic (spec §4.4 step 2): the hash table
	// is always built on the operand with fewer rows.
	if left.ResultSize() > right.ResultSize() {
		left, right = right, left
		pred.Left, pred.Right = pred.Right, pred.Left
		reqLeft, reqRight = reqRight, reqLeft
	}

	copyLeft, err := resolveColumns(left, reqLeft)
	if err != nil {
		return err
	}
	copyRight, err := resolveColumns(right, reqRight)
	if err != nil {
		return err
	}

	j.resolved = make(map[query.Key]int, len(reqLeft)+len(reqRight))
	for i, sel := range reqLeft {
		j.resolved[sel.Key()] = i
	}
	for i, sel := range reqRight {
		j.resolved[sel.Key()] = len(reqLeft) + i
	}

	leftKeyIdx, ok := left.Resolve(pred.Left)
	if !ok {
		return dberror.New(dberror.CategoryPlanner, "join.Join", "left join key not resolvable after run")
	}
	rightKeyIdx, ok := right.Resolve(pred.Right)
	if !ok {
		return dberror.New(dberror.CategoryPlanner, "join.Join", "right join key not resolvable after run")
	}
	leftKeys := left.Results()[leftKeyIdx].Values
	rightKeys := right.Results()[rightKeyIdx].Values

	mm := newMultimap(left.ResultSize(), j.capacityMult)
	for i := uint64(0); i < left.ResultSize(); i++ {
		mm.insert(leftKeys[i], i)
	}

	outCols := make([]operator.Column, len(reqLeft)+len(reqRight))
	for i := range outCols {
		outCols[i] = operator.Column{Owned: true}
	}

	for jr := uint64(0); jr < right.ResultSize(); jr++ {
		mm.forEach(rightKeys[jr], func(li uint64) {
			for ci, col := range copyLeft {
				outCols[ci].Values = append(outCols[ci].Values, col[li])
			}
			for ci, col := range copyRight {
				outCols[len(copyLeft)+ci].Values = append(outCols[len(copyLeft)+ci].Values, col[jr])
			}
			j.size++
		})
	}

	j.columns = outCols
	return nil
}

func resolveColumns(op operator.Operator, sels []query.SelectInfo) ([][]uint64, error) {
	cols := make([][]uint64, len(sels))
	for i, sel := range sels {
		idx, ok := op.Resolve(sel)
		if !ok {
			return nil, dberror.Newf(dberror.CategoryPlanner, "join.Join", "requested column not resolvable after child run",
				"binding=%d column=%d", sel.Binding, sel.Column)
		}
		cols[i] = op.Results()[idx].Values
	}
	return cols, nil
}

func (j *Join) Resolve(sel query.SelectInfo) (int, bool) {
	idx, ok := j.resolved[sel.Key()]
	return idx, ok
}

func (j *Join) Results() []operator.Column { return j.columns }
func (j *Join) ResultSize() uint64         { return j.size }
