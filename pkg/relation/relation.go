// Package relation owns the column-major relation store the engine
// executes queries against. Relations are loaded once, at startup,
// and are read-only for the lifetime of the process: no operator ever
// writes back to relation storage (spec invariant: relations are
// immutable for the lifetime of execution).
package relation

import "fmt"

// ID is a dense, zero-based relation identifier assigned by load
// order, following the small-typed-integer-ID convention this
// codebase uses elsewhere (e.g. a table or file identifier).
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("RelationID(%d)", uint32(id))
}

// Relation is an immutable table of Size rows and len(Columns) columns
// of 64-bit unsigned integers, stored column-major: each entry of
// Columns is a contiguous []uint64 of length Size.
type Relation struct {
	ID      ID
	Size    uint64
	Columns [][]uint64

	// Owned reports whether the engine holds exclusive, non-mapped
	// memory for this relation. Every relation loaded through Store
	// is Owned; see SPEC_FULL.md's "Open Question resolutions" for why
	// this implementation always copies out of the memory map rather
	// than aliasing it.
	Owned bool
}

// NumColumns returns K, the column count.
func (r *Relation) NumColumns() int {
	return len(r.Columns)
}

// Close releases resources backing the relation. Since every Relation
// in this implementation owns copied memory rather than an open
// memory map, Close is a no-op; it exists so callers do not need to
// special-case relations that might someday borrow mapped memory
// again (see the Owned field).
func (r *Relation) Close() error {
	return nil
}
