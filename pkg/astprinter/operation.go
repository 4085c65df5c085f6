package astprinter

import (
	"sort"
	"strings"

	"github.com/edgeql/partitioner/pkg/ast"
)

// PrintOperation renders a whole operation (all of its top-level
// selections, not a single-field SubQuery) plus the given fragment closure,
// canonicalized the same way Print canonicalizes a SubQuery. Used by the
// flat-cache routing path, which forwards an entire query operation as one
// GET rather than splitting it.
func PrintOperation(op *ast.OperationDefinition, fragments []*ast.FragmentDefinition) string {
	var b strings.Builder

	b.WriteString(string(operationKeyword(op.OperationType)))
	b.WriteByte(' ')
	if op.Name != "" {
		b.WriteString(op.Name)
	} else {
		b.WriteString("anonymous")
	}
	if len(op.VariableDefinitions) > 0 {
		b.WriteByte('(')
		for i, def := range op.VariableDefinitions {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('$')
			b.WriteString(def.Name)
			b.WriteString(": ")
			b.WriteString(def.Type.String())
			if def.Default != nil {
				b.WriteString(" = ")
				writeValue(&b, def.Default)
			}
		}
		b.WriteByte(')')
	}
	writeDirectives(&b, op.Directives)
	b.WriteString(" { ")
	writeSelectionSet(&b, op.SelectionSet)
	b.WriteString(" }")

	sortedFragments := make([]*ast.FragmentDefinition, len(fragments))
	copy(sortedFragments, fragments)
	sort.Slice(sortedFragments, func(i, j int) bool {
		return sortedFragments[i].Name < sortedFragments[j].Name
	})
	for _, frag := range sortedFragments {
		b.WriteString(" fragment ")
		b.WriteString(frag.Name)
		b.WriteString(" on ")
		b.WriteString(frag.TypeCondition)
		writeDirectives(&b, frag.Directives)
		b.WriteString(" { ")
		writeSelectionSet(&b, frag.SelectionSet)
		b.WriteString(" }")
	}

	return b.String()
}

func operationKeyword(t ast.OperationType) string {
	return t.String()
}
