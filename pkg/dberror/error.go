// Package dberror defines the structured, fatal error kinds the engine
// can raise. Every run-time failure in this system is a precondition
// violation (malformed query, out-of-range column, missing relation)
// and aborts the current phase of the batch harness; there is no
// in-query error recovery.
package dberror

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category classifies a failure by which phase of §7 it belongs to.
type Category int

const (
	// CategoryParse covers malformed query text: missing '|' parts,
	// unparseable bindings or columns.
	CategoryParse Category = iota

	// CategoryLoad covers invalid relation files: truncated headers,
	// files that cannot be opened or mapped.
	CategoryLoad

	// CategoryBinding covers a binding->RelationID reference that is
	// out of range of the loaded relation set.
	CategoryBinding

	// CategoryColumn covers a column_id >= K reference against a
	// resolved relation.
	CategoryColumn

	// CategoryPlanner covers a planner precondition failure, such as a
	// predicate referencing a binding unreachable from the query's
	// FROM-list.
	CategoryPlanner
)

func (c Category) String() string {
	switch c {
	case CategoryParse:
		return "parse"
	case CategoryLoad:
		return "load"
	case CategoryBinding:
		return "binding"
	case CategoryColumn:
		return "column"
	case CategoryPlanner:
		return "planner"
	default:
		return "unknown"
	}
}

// EngineError is a structured, fatal error carrying enough context to
// diagnose which phase and component produced it. Code is a short,
// grep-friendly mnemonic derived from Category (e.g. "PARSE_ERROR"),
// following the teacher's own DBError.Code convention.
type EngineError struct {
	Code      string
	Category  Category
	Component string
	Message   string
	Detail    string
}

func (e *EngineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Component, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", e.Code, e.Component, e.Message, e.Detail)
}

func codeFor(category Category) string {
	return strings.ToUpper(category.String()) + "_ERROR"
}

// New builds a fresh EngineError with no wrapped cause.
func New(category Category, component, message string) *EngineError {
	return &EngineError{Code: codeFor(category), Category: category, Component: component, Message: message}
}

// Newf builds a fresh EngineError with a formatted detail.
func Newf(category Category, component, message, format string, args ...any) *EngineError {
	return &EngineError{Code: codeFor(category), Category: category, Component: component, Message: message, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches phase/component context to an underlying error: it
// builds an EngineError whose Detail is err's message and wraps it with
// github.com/pkg/errors to record a stack. errors.Cause / Cause on the
// result returns that EngineError; the original error value itself is
// not retained, only its message.
func Wrap(err error, category Category, component, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&EngineError{Code: codeFor(category), Category: category, Component: component, Message: message, Detail: err.Error()}, component)
}

// Cause unwraps to the deepest underlying error, mirroring the
// github.com/pkg/errors convention used across this codebase.
func Cause(err error) error {
	return errors.Cause(err)
}
