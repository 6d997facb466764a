// Package operator implements the pull-style, column-at-a-time
// operator tree: the require/run/resolve contract shared by every
// leaf and internal node, plus the leaf (Scan, FilterScan) and root
// (Checksum) operators. Join and SelfJoin live in the join
// subpackage since both center on the same join-predicate plumbing.
package operator

import (
	"context"

	"joinengine/pkg/query"
)

// Column is the uniform "(pointer, length)" output handle of spec §9:
// a materialized run of values that may alias relation-owned storage
// (a Scan) or be exclusively owned by the producing operator
// (FilterScan, Join, SelfJoin). Owned is documentation only — actual
// ownership is enforced by the operator tree's structure, not by this
// flag.
type Column struct {
	Values []uint64
	Owned  bool
}

// Operator is the contract every node of the execution tree
// implements (spec §4.1). A single-threaded, synchronous pull: no
// operator may suspend or yield, Run is called at most once, and
// Require must be idempotent for repeated calls with the same
// SelectInfo.
type Operator interface {
	// Require requests that column s be present in this operator's
	// output. Returns false when s refers to a binding unreachable
	// from this subtree. Must be called before Run.
	Require(s query.SelectInfo) bool

	// Run executes the operator. After it returns, ResultSize and
	// every exposed Column are frozen.
	Run(ctx context.Context) error

	// Resolve returns the output column index for a SelectInfo
	// previously accepted by Require.
	Resolve(s query.SelectInfo) (index int, ok bool)

	// Results returns the operator's materialized output columns,
	// indexed as Resolve reports.
	Results() []Column

	// ResultSize is the number of tuples produced. Zero until Run
	// completes.
	ResultSize() uint64
}
