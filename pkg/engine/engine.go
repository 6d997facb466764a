// Package engine implements the batch harness (spec §6): it drives
// relation loading and query execution against stdin/stdout, the way
// this codebase's own command loop drives a REPL against a database
// instance.
package engine

import (
	"bufio"
	"context"
	"io"
	"strings"

	"joinengine/pkg/config"
	"joinengine/pkg/logging"
	"joinengine/pkg/planner"
	"joinengine/pkg/query"
	"joinengine/pkg/relation"
)

// doneMarker terminates the relation-path list; batchMarker separates
// batches of queries (spec §6).
const (
	doneMarker  = "Done"
	batchMarker = "F"
)

// Engine owns the relation store and planner for one run of the batch
// harness.
type Engine struct {
	store         *relation.Store
	joiner        *planner.Joiner
	flushPerQuery bool
}

// New builds an Engine backed by a fresh, empty relation store.
func New(cfg config.Config) *Engine {
	store := relation.NewStore()
	joiner := planner.New(store, planner.Config{HashJoinCapacityMultiplier: cfg.Join.CapacityMultiplier})
	return &Engine{store: store, joiner: joiner, flushPerQuery: cfg.Batch.FlushPerQuery}
}

// LoadRelations reads relation file paths from r, one per line, until a
// line containing exactly "Done", then loads them all into the store.
func (e *Engine) LoadRelations(ctx context.Context, r *bufio.Reader) error {
	var paths []string
	for {
		line, err := readLine(r)
		if err != nil {
			return err
		}
		if line == doneMarker {
			break
		}
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	logging.Info("loading relations", "count", len(paths))
	return e.store.LoadAll(ctx, paths)
}

// RunBatches reads batches of query lines from r, each batch terminated
// by a line containing exactly "F", and writes one response line per
// query to w. Execution stops at the first query that fails to parse
// or plan.
func (e *Engine) RunBatches(ctx context.Context, r *bufio.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	batch := 0
	for {
		lines, more, err := readBatch(r)
		if err != nil {
			return err
		}
		if len(lines) == 0 && !more {
			return nil
		}

		log := logging.WithBatch(batch)
		log.Infow("running batch", "queries", len(lines))
		for _, line := range lines {
			result, err := e.RunQuery(ctx, line)
			if err != nil {
				return err
			}
			if _, err := bw.WriteString(result + "\n"); err != nil {
				return err
			}
			if e.flushPerQuery {
				if err := bw.Flush(); err != nil {
					return err
				}
			}
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		batch++

		if !more {
			return nil
		}
	}
}

// RunQuery parses, plans, and executes a single query line, returning
// its formatted response line.
func (e *Engine) RunQuery(ctx context.Context, line string) (string, error) {
	q, err := query.Parse(line)
	if err != nil {
		return "", err
	}
	root, err := e.joiner.Build(q)
	if err != nil {
		return "", err
	}
	if err := root.Run(ctx); err != nil {
		return "", err
	}
	return root.Format(), nil
}

// readBatch reads query lines up to and including the next batch
// marker, or EOF. more is false when EOF was reached without seeing a
// marker.
func readBatch(r *bufio.Reader) (lines []string, more bool, err error) {
	for {
		line, rerr := readLine(r)
		if rerr != nil {
			if rerr == io.EOF {
				return lines, false, nil
			}
			return nil, false, rerr
		}
		if line == batchMarker {
			return lines, true, nil
		}
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	return line, nil
}
