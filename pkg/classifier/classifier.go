// Package classifier decides, for a parsed Document, whether the pipeline
// should partition the selected operation or forward it untouched, per
// spec §4.2.
package classifier

import (
	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/operationreport"
)

// Disposition is the classifier's verdict for a Document.
type Disposition int

const (
	// Partitionable means every operation in the document is a query; the
	// caller should proceed to the partitioner against the selected
	// operation.
	Partitionable Disposition = iota
	// PassThrough means the document contains a mutation or subscription;
	// the original request body must be forwarded verbatim.
	PassThrough
)

// Result is the classifier's output: a Disposition and, when Partitionable,
// the single OperationDefinition selected for partitioning.
type Result struct {
	Disposition Disposition
	Operation   *ast.OperationDefinition
}

// Classify inspects doc and, for multi-operation documents, operationName
// (which may be empty) to pick the operation to execute.
func Classify(doc *ast.Document, operationName string) (*Result, *operationreport.Report) {
	report := &operationreport.Report{}

	if len(doc.Operations) == 0 {
		report.AddExternalError(operationreport.ExternalError{
			Kind:    operationreport.EmptyDocument,
			Message: "document contains no operations",
		})
		return nil, report
	}

	for _, op := range doc.Operations {
		if op.OperationType != ast.Query {
			return &Result{Disposition: PassThrough}, report
		}
	}

	if len(doc.Operations) == 1 {
		return &Result{Disposition: Partitionable, Operation: doc.Operations[0]}, report
	}

	if operationName == "" {
		report.AddExternalError(operationreport.ExternalError{
			Kind:    operationreport.AmbiguousOperation,
			Message: "document contains multiple operations; operationName is required",
		})
		return nil, report
	}

	op := doc.OperationByName(operationName)
	if op == nil {
		report.AddExternalError(operationreport.ExternalError{
			Kind:    operationreport.AmbiguousOperation,
			Message: "operationName " + operationName + " does not match any operation in the document",
		})
		return nil, report
	}

	return &Result{Disposition: Partitionable, Operation: op}, report
}
