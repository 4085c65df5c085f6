// Package graphqlerr renders the client-facing GraphQL error envelope
// ({"errors": [...]}), mirroring the RequestError{Message, Locations, Path}
// shape the teacher's pkg/graphql/errors.go builds from an
// operationreport.Report.
package graphqlerr

import "github.com/edgeql/partitioner/pkg/operationreport"

// Location is a line/column pair for a syntax error, following the GraphQL
// response spec's errors[].locations shape.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is one entry in a GraphQL response's top-level errors array.
type Error struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []any      `json:"path,omitempty"`
}

// Response is the full GraphQL-shaped error envelope returned for fatal
// request-level failures (parse/partition errors, §7).
type Response struct {
	Errors []Error `json:"errors"`
}

// FromReport converts every ExternalError accumulated in report into the
// client-facing Response shape.
func FromReport(report *operationreport.Report) Response {
	out := Response{Errors: make([]Error, 0, len(report.ExternalErrors))}
	for _, ext := range report.ExternalErrors {
		out.Errors = append(out.Errors, Error{
			Message: ext.Message,
			Path:    pathToAny(ext.Path),
		})
	}
	return out
}

func pathToAny(p operationreport.Path) []any {
	if len(p) == 0 {
		return nil
	}
	out := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			out[i] = seg.Index
		} else {
			out[i] = seg.Name
		}
	}
	return out
}

// FromMessage builds a single-error Response, used for errors that never
// went through a Report (e.g. transport-level failures caught in the HTTP
// handler).
func FromMessage(message string) Response {
	return Response{Errors: []Error{{Message: message}}}
}
