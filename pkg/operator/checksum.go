package operator

import (
	"context"
	"strconv"
	"strings"

	"joinengine/pkg/dberror"
	"joinengine/pkg/query"
)

// Checksum is the root operator (spec §4.6). It never accepts Require
// calls of its own — it is always the top of the tree — and instead
// drives the require sweep over its input before running it.
type Checksum struct {
	input      Operator
	selections []query.SelectInfo
	sums       []uint64
	size       uint64
}

// NewChecksum builds a Checksum over input reporting selections, in
// the order given.
func NewChecksum(input Operator, selections []query.SelectInfo) *Checksum {
	return &Checksum{input: input, selections: selections}
}

// Require is a precondition violation: Checksum is always the root.
func (c *Checksum) Require(query.SelectInfo) bool {
	panic("operator: Require called on Checksum, which is always the root")
}

// Run requires every output selection on the input, runs it once, and
// computes the unsigned 64-bit wrapping sum of each output column.
func (c *Checksum) Run(ctx context.Context) error {
	for _, sel := range c.selections {
		if !c.input.Require(sel) {
			return dberror.Newf(dberror.CategoryPlanner, "operator.Checksum", "selection unreachable from join tree",
				"binding=%d column=%d", sel.Binding, sel.Column)
		}
	}
	if err := c.input.Run(ctx); err != nil {
		return err
	}
	c.size = c.input.ResultSize()

	c.sums = make([]uint64, len(c.selections))
	for i, sel := range c.selections {
		idx, ok := c.input.Resolve(sel)
		if !ok {
			return dberror.Newf(dberror.CategoryPlanner, "operator.Checksum", "selection required but not resolvable",
				"binding=%d column=%d", sel.Binding, sel.Column)
		}
		var sum uint64
		for _, v := range c.input.Results()[idx].Values {
			sum += v // unsigned 64-bit wrapping sum, per spec §4.6
		}
		c.sums[i] = sum
	}
	return nil
}

func (c *Checksum) Resolve(query.SelectInfo) (int, bool) { return 0, false }
func (c *Checksum) Results() []Column                    { return nil }
func (c *Checksum) ResultSize() uint64                   { return c.size }

// Sums returns the per-selection sums, in selection order.
func (c *Checksum) Sums() []uint64 { return c.sums }

// Format renders the response line for this checksum (spec §4.7 step
// 5): "NULL" for every column when ResultSize is zero, otherwise the
// decimal sum for each, space-separated.
func (c *Checksum) Format() string {
	parts := make([]string, len(c.selections))
	if c.size == 0 {
		for i := range parts {
			parts[i] = "NULL"
		}
		return strings.Join(parts, " ")
	}
	for i, s := range c.sums {
		parts[i] = strconv.FormatUint(s, 10)
	}
	return strings.Join(parts, " ")
}
