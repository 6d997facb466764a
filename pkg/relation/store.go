package relation

import (
	"context"
	"encoding/binary"

	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"

	"joinengine/pkg/dberror"
	"joinengine/pkg/logging"
)

// headerSize is the two little-endian u64 fields (row count, column
// count) every relation file starts with.
const headerSize = 16

// Store owns every relation loaded for a run of the batch harness.
// Relations are appended only during LoadAll; after that the slice is
// read-only and safe for concurrent readers without further locking,
// matching spec §5's "Relations are shared read-only across queries".
type Store struct {
	relations []*Relation
}

// NewStore returns an empty relation store.
func NewStore() *Store {
	return &Store{}
}

// NewStoreFromRelations builds a Store directly from already-built
// relations, assigning dense IDs by slice position. Bypasses file
// loading entirely; useful wherever relations are constructed
// in-process rather than read from disk (tests, embedding this engine
// as a library).
func NewStoreFromRelations(rels []*Relation) *Store {
	for i, rel := range rels {
		rel.ID = ID(i)
	}
	return &Store{relations: rels}
}

// LoadAll maps every path concurrently (each file is independent, so
// there is no reason to serialize the I/O) and assigns dense
// RelationIDs by the order paths were given, not by completion order.
func (s *Store) LoadAll(ctx context.Context, paths []string) error {
	loaded := make([]*Relation, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rel, err := loadFile(p)
			if err != nil {
				return err
			}
			loaded[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.relations = make([]*Relation, len(loaded))
	for i, rel := range loaded {
		rel.ID = ID(i)
		s.relations[i] = rel
		logging.WithRelation(uint32(i)).Infow("loaded relation", "rows", rel.Size, "columns", rel.NumColumns())
	}
	return nil
}

// Get returns the relation bound to id, or a CategoryBinding error if
// id refers to a relation that was never loaded (spec §7 "Referenced
// relation not loaded").
func (s *Store) Get(id ID) (*Relation, error) {
	if int(id) < 0 || int(id) >= len(s.relations) {
		return nil, dberror.Newf(dberror.CategoryBinding, "relation.Store", "relation not loaded",
			"id=%d loaded=%d", id, len(s.relations))
	}
	return s.relations[id], nil
}

// Len returns how many relations have been loaded.
func (s *Store) Len() int {
	return len(s.relations)
}

func loadFile(path string) (*Relation, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CategoryLoad, "relation.Store", "cannot map relation file "+path)
	}
	defer ra.Close()

	if ra.Len() < headerSize {
		return nil, dberror.Newf(dberror.CategoryLoad, "relation.Store", "invalid relation file",
			"%s: file shorter than %d bytes", path, headerSize)
	}

	header := make([]byte, headerSize)
	if _, err := ra.ReadAt(header, 0); err != nil {
		return nil, dberror.Wrap(err, dberror.CategoryLoad, "relation.Store", "cannot read relation header of "+path)
	}

	n := binary.LittleEndian.Uint64(header[0:8])
	k := binary.LittleEndian.Uint64(header[8:16])

	expected := int64(headerSize) + int64(k)*int64(n)*8
	if int64(ra.Len()) < expected {
		return nil, dberror.Newf(dberror.CategoryLoad, "relation.Store", "invalid relation file",
			"%s: expected at least %d bytes for %d rows x %d columns, file has %d", path, expected, n, k, ra.Len())
	}

	columns := make([][]uint64, k)
	offset := int64(headerSize)
	var buf []byte
	if n > 0 {
		buf = make([]byte, n*8)
	}
	for c := uint64(0); c < k; c++ {
		if n > 0 {
			if _, err := ra.ReadAt(buf, offset); err != nil {
				return nil, dberror.Wrap(err, dberror.CategoryLoad, "relation.Store", "cannot read column data of "+path)
			}
		}
		col := make([]uint64, n)
		for i := uint64(0); i < n; i++ {
			col[i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
		}
		columns[c] = col
		offset += int64(n) * 8
	}

	return &Relation{Size: n, Columns: columns, Owned: true}, nil
}
