package logging

import "go.uber.org/zap"

// WithComponent creates a logger with component/subsystem context.
//
//	log := logging.WithComponent("planner")
//	log.Infow("built join tree", "predicates", n)
func WithComponent(component string) *zap.SugaredLogger {
	return GetLogger().With("component", component)
}

// WithBatch creates a logger with batch-index context, used by the
// batch harness to log per-batch progress.
func WithBatch(index int) *zap.SugaredLogger {
	return GetLogger().With("batch", index)
}

// WithRelation creates a logger with relation-id context.
func WithRelation(relID uint32) *zap.SugaredLogger {
	return GetLogger().With("relation_id", relID)
}

// WithError creates a logger with error context, for structured
// error logging at operation boundaries.
func WithError(err error) *zap.SugaredLogger {
	return GetLogger().With("error", err.Error())
}
