// Package planner builds the left-deep operator tree from a QueryInfo
// (spec §4.7): the Joiner walks the predicate list in order, extending
// a single running root with one leaf per predicate, wrapping the
// root in a SelfJoin for predicates whose two bindings are already
// present, and deferring predicates that reach neither binding yet.
package planner

import (
	"github.com/RoaringBitmap/roaring"

	"joinengine/pkg/dberror"
	"joinengine/pkg/operator"
	"joinengine/pkg/operator/join"
	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

// Config tunes the trees the Joiner builds.
type Config struct {
	// HashJoinCapacityMultiplier is the reserved-capacity factor for
	// every hash join's build-side multimap (spec §4.4 step 4).
	// Defaults to join.DefaultCapacityMultiplier when <= 0.
	HashJoinCapacityMultiplier int
}

// Joiner builds operator trees against a fixed relation.Store.
type Joiner struct {
	store *relation.Store
	cfg   Config
}

// New returns a Joiner reading relations from store.
func New(store *relation.Store, cfg Config) *Joiner {
	if cfg.HashJoinCapacityMultiplier <= 0 {
		cfg.HashJoinCapacityMultiplier = join.DefaultCapacityMultiplier
	}
	return &Joiner{store: store, cfg: cfg}
}

// Build constructs the Checksum-rooted operator tree for q. It does
// not run the tree.
func (j *Joiner) Build(q *query.QueryInfo) (*operator.Checksum, error) {
	if err := j.validate(q); err != nil {
		return nil, err
	}

	if len(q.Predicates) == 0 {
		root, err := j.buildWithoutJoins(q)
		if err != nil {
			return nil, err
		}
		return operator.NewChecksum(root, q.Selections), nil
	}

	root, err := j.buildLeftDeep(q)
	if err != nil {
		return nil, err
	}
	return operator.NewChecksum(root, q.Selections), nil
}

func (j *Joiner) buildWithoutJoins(q *query.QueryInfo) (operator.Operator, error) {
	if len(q.Bindings) != 1 {
		return nil, dberror.New(dberror.CategoryPlanner, "planner.Joiner",
			"query has no join predicates but more than one binding (implied cross product)")
	}
	return j.leaf(q, 0), nil
}

// buildLeftDeep implements spec §4.7 steps 1-3.
func (j *Joiner) buildLeftDeep(q *query.QueryInfo) (operator.Operator, error) {
	predicates := append([]query.PredicateInfo(nil), q.Predicates...)

	used := roaring.New()
	p0 := predicates[0]
	left := j.leaf(q, p0.Left.Binding)
	right := j.leaf(q, p0.Right.Binding)
	used.Add(uint32(p0.Left.Binding))
	used.Add(uint32(p0.Right.Binding))

	var root operator.Operator = join.New(left, right, p0, j.cfg.HashJoinCapacityMultiplier)

	queue := predicates[1:]
	noProgress := 0
	for len(queue) > 0 {
		if noProgress >= len(queue) {
			return nil, dberror.New(dberror.CategoryPlanner, "planner.Joiner",
				"predicate list contains a cross product: no remaining predicate reaches the bindings built so far")
		}

		p := queue[0]
		queue = queue[1:]

		leftIn := used.Contains(uint32(p.Left.Binding))
		rightIn := used.Contains(uint32(p.Right.Binding))

		switch {
		case leftIn && rightIn:
			// Cycle / redundant predicate: wrap the current root,
			// even though it could logically be pushed into a
			// specific subtree (spec §9's deliberate simplification).
			root = join.NewSelfJoin(root, p)
			noProgress = 0

		case leftIn:
			newLeaf := j.leaf(q, p.Right.Binding)
			root = join.New(root, newLeaf, p, j.cfg.HashJoinCapacityMultiplier)
			used.Add(uint32(p.Right.Binding))
			noProgress = 0

		case rightIn:
			newLeaf := j.leaf(q, p.Left.Binding)
			root = join.New(newLeaf, root, p, j.cfg.HashJoinCapacityMultiplier)
			used.Add(uint32(p.Left.Binding))
			noProgress = 0

		default:
			// Deferred: neither binding is reachable yet. Trusted to
			// become extendable once earlier predicates are applied.
			queue = append(queue, p)
			noProgress++
		}
	}

	return root, nil
}

// leaf builds a Scan, or a FilterScan when at least one filter
// references binding b (spec §4.7's "FilterScan inclusion rule").
func (j *Joiner) leaf(q *query.QueryInfo, b query.Binding) operator.Operator {
	relID := q.Bindings[b]
	rel, _ := j.store.Get(relID) // already validated in Build

	var filters []query.FilterInfo
	for _, f := range q.Filters {
		if f.Select.Binding == b {
			filters = append(filters, f)
		}
	}
	if len(filters) == 0 {
		return operator.NewScan(rel, b)
	}
	return operator.NewFilterScan(rel, b, filters)
}

// validate is the pre-pass grounded on the original implementation's
// query-graph sanity check (SPEC_FULL.md, "Planner / Joiner"): every
// binding referenced anywhere in the query must be in range of the
// binding table, and every binding must resolve to a loaded relation,
// checked up front rather than discovered deep inside a require call.
func (j *Joiner) validate(q *query.QueryInfo) error {
	for _, rid := range q.Bindings {
		if _, err := j.store.Get(rid); err != nil {
			return err
		}
	}

	inRange := func(sel query.SelectInfo) error {
		if int(sel.Binding) >= len(q.Bindings) {
			return dberror.Newf(dberror.CategoryPlanner, "planner.Joiner", "binding out of range",
				"binding=%d bindings=%d", sel.Binding, len(q.Bindings))
		}
		return nil
	}

	for _, p := range q.Predicates {
		if err := inRange(p.Left); err != nil {
			return err
		}
		if err := inRange(p.Right); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := inRange(f.Select); err != nil {
			return err
		}
	}
	for _, s := range q.Selections {
		if err := inRange(s); err != nil {
			return err
		}
	}
	return nil
}
