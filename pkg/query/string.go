package query

import (
	"strconv"
	"strings"
)

// String reconstructs the canonical R|P|S text for q, with join
// predicates followed by filters, both in their original order —
// exactly the canonicalization spec §8 property 7 ("Parse
// round-trip") requires when comparing against arbitrary input
// ordering of the P section.
func (q *QueryInfo) String() string {
	var b strings.Builder

	for i, rid := range q.Bindings {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(uint64(rid), 10))
	}
	b.WriteByte('|')

	first := true
	writeSep := func() {
		if !first {
			b.WriteByte('&')
		}
		first = false
	}
	for _, p := range q.Predicates {
		writeSep()
		b.WriteString(p.String())
	}
	for _, f := range q.Filters {
		writeSep()
		b.WriteString(f.String())
	}
	b.WriteByte('|')

	for i, s := range q.Selections {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.String())
	}

	return b.String()
}
