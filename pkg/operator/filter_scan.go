package operator

import (
	"context"

	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

// FilterScan is a leaf operator over a Relation bound as binding,
// carrying a non-empty list of filters all referencing that binding
// (spec §4.3). Unlike Scan it materializes owned output columns,
// since only the passing rows are kept.
type FilterScan struct {
	rel      *relation.Relation
	binding  query.Binding
	filters  []query.FilterInfo
	resolved map[query.Key]int
	required []query.SelectInfo
	columns  []Column
	size     uint64
}

// NewFilterScan constructs a FilterScan over rel bound as b, applying
// filters (all of which must reference b).
func NewFilterScan(rel *relation.Relation, b query.Binding, filters []query.FilterInfo) *FilterScan {
	return &FilterScan{rel: rel, binding: b, filters: filters, resolved: make(map[query.Key]int)}
}

// Require accepts s iff s.Binding == the FilterScan's binding. First
// acceptance allocates an owned output column; repeats are a no-op.
func (f *FilterScan) Require(sel query.SelectInfo) bool {
	if sel.Binding != f.binding {
		return false
	}
	k := sel.Key()
	if _, ok := f.resolved[k]; ok {
		return true
	}
	idx := len(f.required)
	f.required = append(f.required, sel)
	f.resolved[k] = idx
	return true
}

// Run scans every row of the relation. A row passes iff every filter
// holds; its required columns, in required order, are appended to the
// owned output. The scan loop runs — and ResultSize is updated —
// even when no column was ever required (spec §4.3 edge case).
func (f *FilterScan) Run(context.Context) error {
	f.columns = make([]Column, len(f.required))
	for i := range f.columns {
		f.columns[i] = Column{Owned: true}
	}

	for row := uint64(0); row < f.rel.Size; row++ {
		if !f.passes(row) {
			continue
		}
		for ci, sel := range f.required {
			f.columns[ci].Values = append(f.columns[ci].Values, f.rel.Columns[sel.Column][row])
		}
		f.size++
	}
	return nil
}

func (f *FilterScan) passes(row uint64) bool {
	for _, flt := range f.filters {
		v := f.rel.Columns[flt.Select.Column][row]
		switch flt.Op {
		case query.Less:
			if !(v < flt.Value) {
				return false
			}
		case query.Greater:
			if !(v > flt.Value) {
				return false
			}
		case query.Equal:
			if v != flt.Value {
				return false
			}
		}
	}
	return true
}

func (f *FilterScan) Resolve(sel query.SelectInfo) (int, bool) {
	idx, ok := f.resolved[sel.Key()]
	return idx, ok
}

func (f *FilterScan) Results() []Column      { return f.columns }
func (f *FilterScan) ResultSize() uint64     { return f.size }
func (f *FilterScan) Binding() query.Binding { return f.binding }
