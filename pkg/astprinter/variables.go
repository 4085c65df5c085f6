package astprinter

import (
	"github.com/buger/jsonparser"

	"github.com/edgeql/partitioner/internal/pkg/quotes"
	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/partition"
)

// FilterVariables extracts, from the caller-supplied raw JSON variables
// object, only the entries declared by sq — per spec §4.4's "filtered
// variables JSON object containing only the declared variables' values".
func FilterVariables(raw []byte, sq *partition.SubQuery) ([]byte, error) {
	return filterVariablesFor(raw, sq.VariableDefinitions)
}

// FilterVariablesForOperation is FilterVariables' counterpart for the
// flat-cache path, which forwards a whole operation's variable
// declarations rather than a SubQuery's minimal subset.
func FilterVariablesForOperation(raw []byte, op *ast.OperationDefinition) ([]byte, error) {
	return filterVariablesFor(raw, op.VariableDefinitions)
}

// filterVariablesFor pulls each declared key straight out of the raw bytes
// with jsonparser rather than unmarshalling the whole object into a map,
// the same streaming-extraction approach the teacher corpus reaches for
// when only a handful of top-level keys are needed out of an arbitrarily
// large payload.
func filterVariablesFor(raw []byte, defs []*ast.VariableDefinition) ([]byte, error) {
	if len(defs) == 0 {
		return []byte("{}"), nil
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	out := []byte("{}")
	for _, def := range defs {
		value, valueType, _, err := jsonparser.Get(raw, def.Name)
		if err == jsonparser.KeyPathNotFoundError {
			continue
		}
		if err != nil {
			return nil, err
		}

		var setErr error
		switch valueType {
		case jsonparser.String:
			out, setErr = jsonparser.Set(out, quotes.WrapBytes(value), def.Name)
		default:
			out, setErr = jsonparser.Set(out, value, def.Name)
		}
		if setErr != nil {
			return nil, setErr
		}
	}
	return out, nil
}
