// Package query holds the per-query entities of the join engine:
// bindings, selections, join predicates, filters, and the resolved
// QueryInfo the planner consumes.
package query

import (
	"fmt"

	"joinengine/pkg/relation"
)

// Binding is a per-query, zero-based positional alias for a relation
// occurrence in the FROM-list. The same relation.ID may appear at
// more than one binding (a self-binding / self-join).
type Binding uint32

// ColumnID identifies a column within whichever relation a binding
// resolves to.
type ColumnID uint32

// CompareOp is one of the three filter comparisons the engine
// supports against a constant.
type CompareOp int

const (
	Less CompareOp = iota
	Greater
	Equal
)

func (op CompareOp) String() string {
	switch op {
	case Less:
		return "<"
	case Greater:
		return ">"
	case Equal:
		return "="
	default:
		return "?"
	}
}

// SelectInfo is a (binding, column) pair, optionally annotated with
// the RelationID it resolves to once a QueryInfo has been resolved.
//
// Semantic equality is (RelID, Binding, Column); but within the
// lifetime of a single query, a binding always resolves to the same
// RelationID, so keying operator resolution maps on Key() — which
// only carries (Binding, Column) — is equivalent in practice to the
// full three-field comparison and is exactly the hashing rule the
// spec calls for.
type SelectInfo struct {
	Binding Binding
	Column  ColumnID
	RelID   relation.ID
}

// Key is the map key type operators use for require/resolve
// bookkeeping.
type Key struct {
	Binding Binding
	Column  ColumnID
}

// Key returns the (Binding, Column) hash key for sel.
func (sel SelectInfo) Key() Key {
	return Key{Binding: sel.Binding, Column: sel.Column}
}

func (sel SelectInfo) String() string {
	return fmt.Sprintf("%d.%d", sel.Binding, sel.Column)
}

// FilterInfo is a comparison between one binding's column and a
// constant: (SelectInfo, op, constant).
type FilterInfo struct {
	Select SelectInfo
	Op     CompareOp
	Value  uint64
}

func (f FilterInfo) String() string {
	return fmt.Sprintf("%s%s%d", f.Select, f.Op, f.Value)
}

// PredicateInfo is an equi-join condition between two (possibly
// equal) bindings.
type PredicateInfo struct {
	Left  SelectInfo
	Right SelectInfo
}

func (p PredicateInfo) String() string {
	return fmt.Sprintf("%s=%s", p.Left, p.Right)
}

// QueryInfo is the fully-parsed shape of one query line: the binding
// table, the join predicates and filters (in original order), and the
// output selection list.
type QueryInfo struct {
	// Bindings maps binding position -> RelationID, i.e. Bindings[b]
	// is the relation bound at position b.
	Bindings []relation.ID

	Predicates []PredicateInfo
	Filters    []FilterInfo
	Selections []SelectInfo
}

// Resolve fixes every SelectInfo's RelID field so it agrees with the
// binding table, per spec §3's QueryInfo invariant.
func (q *QueryInfo) Resolve() {
	relOf := func(b Binding) relation.ID {
		if int(b) < 0 || int(b) >= len(q.Bindings) {
			return relation.ID(^uint32(0))
		}
		return q.Bindings[b]
	}
	for i := range q.Predicates {
		q.Predicates[i].Left.RelID = relOf(q.Predicates[i].Left.Binding)
		q.Predicates[i].Right.RelID = relOf(q.Predicates[i].Right.Binding)
	}
	for i := range q.Filters {
		q.Filters[i].Select.RelID = relOf(q.Filters[i].Select.Binding)
	}
	for i := range q.Selections {
		q.Selections[i].RelID = relOf(q.Selections[i].Binding)
	}
}
