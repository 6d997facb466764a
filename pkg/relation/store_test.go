package relation

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRelationFile(t *testing.T, dir, name string, rows [][]uint64) string {
	t.Helper()
	path := filepath.Join(dir, name)

	var n, k uint64
	if len(rows) > 0 {
		k = uint64(len(rows))
		n = uint64(len(rows[0]))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(header[0:8], n)
	binary.LittleEndian.PutUint64(header[8:16], k)
	_, err = f.Write(header)
	require.NoError(t, err)

	buf := make([]byte, 8)
	for _, col := range rows {
		for _, v := range col {
			binary.LittleEndian.PutUint64(buf, v)
			_, err := f.Write(buf)
			require.NoError(t, err)
		}
	}
	return path
}

func TestLoadAllAssignsIDsByOrder(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{1, 2, 3}, {4, 5, 6}})
	pathB := writeRelationFile(t, dir, "b.bin", [][]uint64{{7, 8}})

	store := NewStore()
	require.NoError(t, store.LoadAll(context.Background(), []string{pathA, pathB}))

	require.Equal(t, 2, store.Len())

	relA, err := store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), relA.Size)
	assert.Equal(t, 2, relA.NumColumns())
	assert.Equal(t, []uint64{1, 2, 3}, relA.Columns[0])
	assert.Equal(t, []uint64{4, 5, 6}, relA.Columns[1])
	assert.True(t, relA.Owned)

	relB, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), relB.Size)
}

func TestGetOutOfRange(t *testing.T) {
	store := NewStore()
	_, err := store.Get(0)
	assert.Error(t, err)
}

func TestLoadFileRejectsTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := loadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsShortBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(header[0:8], 10) // claims 10 rows
	binary.LittleEndian.PutUint64(header[8:16], 1) // 1 column
	require.NoError(t, os.WriteFile(path, header, 0o644))

	_, err := loadFile(path)
	assert.Error(t, err)
}

func TestLoadFileEmptyRelation(t *testing.T) {
	dir := t.TempDir()
	path := writeRelationFile(t, dir, "empty.bin", nil)

	rel, err := loadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rel.Size)
	assert.Equal(t, 0, rel.NumColumns())
}
