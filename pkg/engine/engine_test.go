package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joinengine/pkg/config"
)

func writeRelationFile(t *testing.T, dir, name string, cols [][]uint64) string {
	t.Helper()
	path := filepath.Join(dir, name)

	var n, k uint64
	if len(cols) > 0 {
		k = uint64(len(cols))
		n = uint64(len(cols[0]))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header[0:8], n)
	binary.LittleEndian.PutUint64(header[8:16], k)
	_, err = f.Write(header)
	require.NoError(t, err)

	buf := make([]byte, 8)
	for _, col := range cols {
		for _, v := range col {
			binary.LittleEndian.PutUint64(buf, v)
			_, err := f.Write(buf)
			require.NoError(t, err)
		}
	}
	return path
}

func TestEngineEndToEndBatch(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{1, 2, 3}})
	pathB := writeRelationFile(t, dir, "b.bin", [][]uint64{{1, 2, 3}, {10, 20, 30}})

	input := strings.Join([]string{
		pathA,
		pathB,
		"Done",
		"0 1|0.0=1.0|1.1",
		"0||0.0",
		"F",
	}, "\n") + "\n"

	e := New(config.Defaults())
	r := bufio.NewReader(bytes.NewBufferString(input))
	ctx := context.Background()

	require.NoError(t, e.LoadRelations(ctx, r))

	var out bytes.Buffer
	require.NoError(t, e.RunBatches(ctx, r, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "60", lines[0]) // 10+20+30
	assert.Equal(t, "6", lines[1])  // 1+2+3
}

func TestEngineMultipleBatches(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{5, 6}})

	input := strings.Join([]string{
		pathA,
		"Done",
		"0||0.0",
		"F",
		"0||0.0",
		"F",
	}, "\n") + "\n"

	e := New(config.Defaults())
	r := bufio.NewReader(bytes.NewBufferString(input))
	ctx := context.Background()

	require.NoError(t, e.LoadRelations(ctx, r))

	var out bytes.Buffer
	require.NoError(t, e.RunBatches(ctx, r, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "11", lines[0])
	assert.Equal(t, "11", lines[1])
}

// flushCountingWriter counts how many times the underlying writer sees
// a Write call, as a proxy for how often the caller flushed.
type flushCountingWriter struct {
	bytes.Buffer
	writes int
}

func (w *flushCountingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestEngineFlushPerQueryFlushesEachLine(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{1, 2}})

	input := strings.Join([]string{
		pathA,
		"Done",
		"0||0.0",
		"0||0.0",
		"0||0.0",
		"F",
	}, "\n") + "\n"

	cfg := config.Defaults()
	cfg.Batch.FlushPerQuery = true
	e := New(cfg)
	r := bufio.NewReader(bytes.NewBufferString(input))
	ctx := context.Background()
	require.NoError(t, e.LoadRelations(ctx, r))

	out := &flushCountingWriter{}
	require.NoError(t, e.RunBatches(ctx, r, out))

	// One write per query line, since flushPerQuery forces a flush after
	// each WriteString instead of batching them into one flush.
	assert.Equal(t, 3, out.writes)
}

func TestEngineWithoutFlushPerQueryBatchesWrites(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{1, 2}})

	input := strings.Join([]string{
		pathA,
		"Done",
		"0||0.0",
		"0||0.0",
		"0||0.0",
		"F",
	}, "\n") + "\n"

	e := New(config.Defaults())
	r := bufio.NewReader(bytes.NewBufferString(input))
	ctx := context.Background()
	require.NoError(t, e.LoadRelations(ctx, r))

	out := &flushCountingWriter{}
	require.NoError(t, e.RunBatches(ctx, r, out))

	// Default behavior buffers all three query lines and flushes once at
	// the batch boundary.
	assert.Equal(t, 1, out.writes)
}

func TestEngineQueryErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	pathA := writeRelationFile(t, dir, "a.bin", [][]uint64{{1}})

	input := strings.Join([]string{pathA, "Done"}, "\n") + "\n"
	e := New(config.Defaults())
	r := bufio.NewReader(bytes.NewBufferString(input))
	ctx := context.Background()
	require.NoError(t, e.LoadRelations(ctx, r))

	_, err := e.RunQuery(ctx, "not a valid query")
	assert.Error(t, err)
}
