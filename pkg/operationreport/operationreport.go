// Package operationreport collects parse and partition failures into a
// uniform Report, the same accumulate-then-inspect shape the teacher's
// pkg/operationreport uses to gather errors across a parse/validate pass
// before deciding whether a request succeeded.
package operationreport

import "strings"

// ErrorKind enumerates the invariant violations the parser and partitioner
// can detect, matching spec §7's error-kind list.
type ErrorKind int

const (
	Syntax ErrorKind = iota
	EmptyDocument
	EmptyOperation
	AmbiguousOperation
	InvalidFragmentReference
	DuplicateResponseKey
)

func (k ErrorKind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case EmptyDocument:
		return "EmptyDocument"
	case EmptyOperation:
		return "EmptyOperation"
	case AmbiguousOperation:
		return "AmbiguousOperation"
	case InvalidFragmentReference:
		return "InvalidFragmentReference"
	case DuplicateResponseKey:
		return "DuplicateResponseKey"
	default:
		return "Unknown"
	}
}

// Path identifies a location within a GraphQL response using the standard
// field-name/list-index segment encoding.
type Path []PathSegment

// PathSegment is either a field name or a list index; exactly one of Name
// (non-empty) or Index (with IsIndex true) is meaningful.
type PathSegment struct {
	Name    string
	Index   int
	IsIndex bool
}

// ExternalError is one client-facing error: a message, an error kind for
// internal dispatch, and an optional response path.
type ExternalError struct {
	Message string
	Kind    ErrorKind
	Path    Path
}

// Report accumulates ExternalErrors across a parse or partition pass. A
// zero-value Report is ready to use.
type Report struct {
	ExternalErrors []ExternalError
}

// AddExternalError appends err to the report.
func (r *Report) AddExternalError(err ExternalError) {
	r.ExternalErrors = append(r.ExternalErrors, err)
}

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool {
	return len(r.ExternalErrors) > 0
}

// Error implements the error interface by joining all accumulated messages,
// so a Report can be returned directly as a Go error when convenient.
func (r *Report) Error() string {
	if !r.HasErrors() {
		return ""
	}
	messages := make([]string, len(r.ExternalErrors))
	for i, e := range r.ExternalErrors {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}

// FirstKind returns the Kind of the first recorded error, used by callers
// that need to pick an HTTP status from a Report that is known to be
// non-empty.
func (r *Report) FirstKind() (ErrorKind, bool) {
	if !r.HasErrors() {
		return 0, false
	}
	return r.ExternalErrors[0].Kind, true
}
