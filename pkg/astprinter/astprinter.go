// Package astprinter serializes a partition.SubQuery back to canonical
// GraphQL text suitable for use as a cache-key-stable GET query parameter,
// per spec §4.4. Canonicalization fixes what the parser does not guarantee:
// fragments are sorted by name so identical subtrees produce identical text
// regardless of the source query's fragment ordering; whitespace follows one
// fixed layout and there are no comments. That layout puts a single space
// between selections, arguments and list items and inside selection-set
// braces, but no space next to parentheses, brackets or object-value braces
// (`name(a: 1 b: 2)`), so not every pair of tokens is space-separated.
package astprinter

import (
	"sort"
	"strings"

	"github.com/edgeql/partitioner/internal/pkg/quotes"
	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/partition"
)

// Print renders sq as a complete, standalone GraphQL operation document:
// the synthetic query operation followed by its fragment closure, fragments
// ordered by name ascending.
func Print(sq *partition.SubQuery) string {
	var b strings.Builder

	b.WriteString("query ")
	b.WriteString(sq.Name)
	if len(sq.VariableDefinitions) > 0 {
		b.WriteByte('(')
		for i, def := range sq.VariableDefinitions {
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
	writeDirectives(&b, sq.Directives)
	b.WriteString(" { ")
	writeSelection(&b, sq.RootSelection)
	b.WriteString(" }")

	sortedFragments := make([]*ast.FragmentDefinition, len(sq.Fragments))
	copy(sortedFragments, sq.Fragments)
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

func writeSelectionSet(b *strings.Builder, set *ast.SelectionSet) {
	for i, sel := range set.Selections {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeSelection(b, sel)
	}
}

func writeSelection(b *strings.Builder, sel *ast.Selection) {
	switch sel.Kind {
	case ast.FieldSelection:
		writeField(b, sel.Field)
	case ast.FragmentSpreadSelection:
		b.WriteString("...")
		b.WriteString(sel.FragmentSpread.FragmentName)
		writeDirectives(b, sel.FragmentSpread.Directives)
	case ast.InlineFragmentSelection:
		inline := sel.InlineFragment
		b.WriteString("...")
		if inline.TypeCondition != "" {
			b.WriteString(" on ")
			b.WriteString(inline.TypeCondition)
		}
		writeDirectives(b, inline.Directives)
		b.WriteString(" { ")
		writeSelectionSet(b, inline.SelectionSet)
		b.WriteString(" }")
	}
}

func writeField(b *strings.Builder, f *ast.Field) {
	if f.Alias != "" {
		b.WriteString(f.Alias)
		b.WriteByte(':')
		b.WriteByte(' ')
	}
	b.WriteString(f.Name)
	if len(f.Arguments) > 0 {
		b.WriteByte('(')
		for i, arg := range f.Arguments {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(arg.Name)
			b.WriteByte(':')
			b.WriteByte(' ')
			writeValue(b, arg.Value)
		}
		b.WriteByte(')')
	}
	writeDirectives(b, f.Directives)
	if f.SelectionSet != nil {
		b.WriteString(" { ")
		writeSelectionSet(b, f.SelectionSet)
		b.WriteString(" }")
	}
}

func writeDirectives(b *strings.Builder, dirs []*ast.Directive) {
	for _, d := range dirs {
		b.WriteByte(' ')
		b.WriteByte('@')
		b.WriteString(d.Name)
		if len(d.Arguments) > 0 {
			b.WriteByte('(')
			for i, arg := range d.Arguments {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(arg.Name)
				b.WriteByte(':')
				b.WriteByte(' ')
				writeValue(b, arg.Value)
			}
			b.WriteByte(')')
		}
	}
}

func writeValue(b *strings.Builder, v *ast.Value) {
	switch v.Kind {
	case ast.VariableValue:
		b.WriteByte('$')
		b.WriteString(v.VariableName)
	case ast.IntValue, ast.FloatValue, ast.EnumValue:
		b.WriteString(v.Raw)
	case ast.StringValue:
		b.WriteString(quotes.WrapString(escapeString(v.StringVal)))
	case ast.BooleanValue:
		if v.BooleanVal {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ast.NullValue:
		b.WriteString("null")
	case ast.ListValue:
		b.WriteByte('[')
		for i, item := range v.ListVal {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case ast.ObjectValue:
		b.WriteByte('{')
		for i, f := range v.ObjectVal {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.Name)
			b.WriteByte(':')
			b.WriteByte(' ')
			writeValue(b, f.Value)
		}
		b.WriteByte('}')
	}
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
