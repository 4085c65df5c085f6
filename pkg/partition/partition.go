// Package partition implements the GraphQL operation partitioner: given a
// single query operation and its fragment table, it produces the minimal set
// of independently cacheable SubQuery operations plus the RecompositionPlan
// describing how their results reassemble into the original response shape.
package partition

import (
	"fmt"

	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/operationreport"
)

// SubQuery is a synthetic single-root-field query operation, carrying the
// minimal fragment and variable closures its selection actually needs.
type SubQuery struct {
	// Name is the original operation's name suffixed with a deterministic
	// discriminator, so logs and cache keys distinguish siblings split from
	// the same source operation.
	Name string

	ResponseKey string

	RootSelection *ast.Selection

	// Fragments holds the transitive closure of FragmentDefinitions
	// reachable from RootSelection; each fragment comes after every fragment
	// it spreads.
	Fragments []*ast.FragmentDefinition

	// VariableDefinitions holds the subset of the original operation's
	// declarations actually referenced anywhere in RootSelection's closure.
	VariableDefinitions []*ast.VariableDefinition

	// Directives carries the operation-level directives of the original
	// operation, propagated to every emitted SubQuery per spec §4.3 step 7.
	Directives []*ast.Directive
}

// PlanEntry records where one SubQuery's result projects back into the
// final response: under ResponseKey, at the position given by the entry's
// index in Plan.
type PlanEntry struct {
	ResponseKey  string
	SubQueryName string
}

// Plan is the ordered RecompositionPlan; its order equals the source
// operation's top-level selection order.
type Plan []PlanEntry

// Result bundles the emitted SubQueries with their RecompositionPlan.
type Result struct {
	SubQueries []*SubQuery
	Plan       Plan
}

// emission is one fully-formed candidate SubQuery root selection, produced
// while expanding a top-level selection. Inline-fragment wrapping (spec
// §4.3 step 4) is applied eagerly as emissions bubble up through expand, so
// by the time an emission reaches the caller its selection is exactly the
// tree that belongs in the SubQuery.
type emission struct {
	selection *ast.Selection
}

// Partition runs the seven-step algorithm of spec §4.3 against operation op,
// using fragments as the fragment table. It returns a Report describing any
// invariant violation (InvalidFragmentReference, DuplicateResponseKey,
// EmptyOperation); on error, result is nil.
func Partition(op *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition) (*Result, *operationreport.Report) {
	report := &operationreport.Report{}

	if op.SelectionSet == nil || len(op.SelectionSet.Selections) == 0 {
		report.AddExternalError(operationreport.ExternalError{
			Kind:    operationreport.EmptyOperation,
			Message: "operation has an empty root selection set",
		})
		return nil, report
	}

	var emissions []emission
	for _, sel := range op.SelectionSet.Selections {
		expanded, ok := expand(sel, fragments, nil, report)
		if !ok {
			return nil, report
		}
		emissions = append(emissions, expanded...)
	}

	seenKeys := make(map[string]bool, len(emissions))
	var subQueries []*SubQuery
	var plan Plan

	for i, em := range emissions {
		responseKey := responseKeyOf(em.selection)
		if seenKeys[responseKey] {
			report.AddExternalError(operationreport.ExternalError{
				Kind:    operationreport.DuplicateResponseKey,
				Message: fmt.Sprintf("duplicate response key %q across emitted sub-queries", responseKey),
			})
			return nil, report
		}
		seenKeys[responseKey] = true

		root := em.selection
		name := fmt.Sprintf("%s_%d", operationBaseName(op), i)

		closure := fragmentClosure(root, fragments, report)
		if report.HasErrors() {
			return nil, report
		}

		varNames := collectVariableNames(root, closure)
		varDefs := filterVariableDefinitions(op.VariableDefinitions, varNames)

		sq := &SubQuery{
			Name:                name,
			ResponseKey:         responseKey,
			RootSelection:       root,
			Fragments:           closure,
			VariableDefinitions: varDefs,
			Directives:          op.Directives,
		}
		subQueries = append(subQueries, sq)
		plan = append(plan, PlanEntry{ResponseKey: responseKey, SubQueryName: name})
	}

	return &Result{SubQueries: subQueries, Plan: plan}, report
}

func operationBaseName(op *ast.OperationDefinition) string {
	if op.Name != "" {
		return op.Name
	}
	return "anonymous"
}

func responseKeyOf(sel *ast.Selection) string {
	switch sel.Kind {
	case ast.FieldSelection:
		return sel.Field.ResponseKey()
	case ast.InlineFragmentSelection:
		return responseKeyOf(sel.InlineFragment.SelectionSet.Selections[0])
	default:
		panic("partition: responseKeyOf called on non-Field, non-InlineFragment selection")
	}
}

// expand implements steps 2-4 of §4.3: a Field emits itself; a FragmentSpread
// inlines its fragment's top-level selections (recursively, following
// further spreads/inline fragments inside); an InlineFragment recurses into
// its selection set, wrapping each resulting emission in an equivalent
// InlineFragment that preserves the original type condition and directives.
func expand(sel *ast.Selection, fragments map[string]*ast.FragmentDefinition, seenFragments map[string]bool, report *operationreport.Report) ([]emission, bool) {
	switch sel.Kind {
	case ast.FieldSelection:
		return []emission{{selection: sel}}, true

	case ast.FragmentSpreadSelection:
		name := sel.FragmentSpread.FragmentName
		if seenFragments[name] {
			report.AddExternalError(operationreport.ExternalError{
				Kind:    operationreport.InvalidFragmentReference,
				Message: fmt.Sprintf("fragment cycle detected at %q", name),
			})
			return nil, false
		}
		frag, ok := fragments[name]
		if !ok {
			report.AddExternalError(operationreport.ExternalError{
				Kind:    operationreport.InvalidFragmentReference,
				Message: fmt.Sprintf("fragment %q is not defined", name),
			})
			return nil, false
		}

		nextSeen := markSeen(seenFragments, name)
		var out []emission
		for _, inner := range frag.SelectionSet.Selections {
			expanded, ok := expand(inner, fragments, nextSeen, report)
			if !ok {
				return nil, false
			}
			out = append(out, expanded...)
		}
		return out, true

	case ast.InlineFragmentSelection:
		inline := sel.InlineFragment
		var out []emission
		for _, inner := range inline.SelectionSet.Selections {
			expanded, ok := expand(inner, fragments, seenFragments, report)
			if !ok {
				return nil, false
			}
			for _, em := range expanded {
				wrapped := &ast.Selection{
					Kind: ast.InlineFragmentSelection,
					InlineFragment: &ast.InlineFragment{
						TypeCondition: inline.TypeCondition,
						Directives:    inline.Directives,
						SelectionSet:  &ast.SelectionSet{Selections: []*ast.Selection{em.selection}},
					},
				}
				out = append(out, emission{selection: wrapped})
			}
		}
		return out, true

	default:
		panic("partition: expand called on unknown selection kind")
	}
}

func markSeen(seen map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(seen)+1)
	for k := range seen {
		next[k] = true
	}
	next[name] = true
	return next
}

// fragmentClosure computes the transitive closure of FragmentDefinitions
// reachable from root (step 5), detecting cycles along the way.
func fragmentClosure(root *ast.Selection, fragments map[string]*ast.FragmentDefinition, report *operationreport.Report) []*ast.FragmentDefinition {
	var order []*ast.FragmentDefinition
	included := make(map[string]bool)
	visiting := make(map[string]bool)

	var walkSelection func(sel *ast.Selection)
	var walkFragment func(name string)

	walkFragment = func(name string) {
		if included[name] {
			return
		}
		if visiting[name] {
			report.AddExternalError(operationreport.ExternalError{
				Kind:    operationreport.InvalidFragmentReference,
				Message: fmt.Sprintf("fragment cycle detected at %q", name),
			})
			return
		}
		frag, ok := fragments[name]
		if !ok {
			report.AddExternalError(operationreport.ExternalError{
				Kind:    operationreport.InvalidFragmentReference,
				Message: fmt.Sprintf("fragment %q is not defined", name),
			})
			return
		}
		visiting[name] = true
		for _, sel := range frag.SelectionSet.Selections {
			walkSelection(sel)
		}
		visiting[name] = false
		included[name] = true
		order = append(order, frag)
	}

	walkSelection = func(sel *ast.Selection) {
		switch sel.Kind {
		case ast.FieldSelection:
			if sel.Field.SelectionSet != nil {
				for _, child := range sel.Field.SelectionSet.Selections {
					walkSelection(child)
				}
			}
		case ast.FragmentSpreadSelection:
			walkFragment(sel.FragmentSpread.FragmentName)
		case ast.InlineFragmentSelection:
			for _, child := range sel.InlineFragment.SelectionSet.Selections {
				walkSelection(child)
			}
		}
	}

	walkSelection(root)
	return order
}

// collectVariableNames gathers every variable name referenced in argument
// values and directive argument values anywhere within root and its
// fragment closure (step 6).
func collectVariableNames(root *ast.Selection, closure []*ast.FragmentDefinition) map[string]bool {
	names := make(map[string]bool)

	var walkValue func(v *ast.Value)
	walkValue = func(v *ast.Value) {
		if v == nil {
			return
		}
		switch v.Kind {
		case ast.VariableValue:
			names[v.VariableName] = true
		case ast.ListValue:
			for _, item := range v.ListVal {
				walkValue(item)
			}
		case ast.ObjectValue:
			for _, f := range v.ObjectVal {
				walkValue(f.Value)
			}
		}
	}

	walkArgs := func(args []*ast.Argument) {
		for _, a := range args {
			walkValue(a.Value)
		}
	}
	walkDirectives := func(dirs []*ast.Directive) {
		for _, d := range dirs {
			walkArgs(d.Arguments)
		}
	}

	var walkSelection func(sel *ast.Selection)
	walkSelection = func(sel *ast.Selection) {
		switch sel.Kind {
		case ast.FieldSelection:
			walkArgs(sel.Field.Arguments)
			walkDirectives(sel.Field.Directives)
			if sel.Field.SelectionSet != nil {
				for _, child := range sel.Field.SelectionSet.Selections {
					walkSelection(child)
				}
			}
		case ast.FragmentSpreadSelection:
			walkDirectives(sel.FragmentSpread.Directives)
		case ast.InlineFragmentSelection:
			walkDirectives(sel.InlineFragment.Directives)
			for _, child := range sel.InlineFragment.SelectionSet.Selections {
				walkSelection(child)
			}
		}
	}

	walkSelection(root)
	for _, frag := range closure {
		walkDirectives(frag.Directives)
		for _, sel := range frag.SelectionSet.Selections {
			walkSelection(sel)
		}
	}

	return names
}

// FragmentClosureForOperation computes the transitive fragment closure of
// every top-level selection in op, with no duplicates: the per-selection
// closures are concatenated in selection order, each one listing a fragment
// after the fragments it spreads.
// Used by the flat-cache routing path (SPEC's DoNotPartition behavior),
// which forwards a whole operation as one GET and therefore needs the same
// minimal-but-complete fragment set the partitioner would compute per
// SubQuery, just unioned across the whole root selection set instead of
// one field at a time.
func FragmentClosureForOperation(op *ast.OperationDefinition, fragments map[string]*ast.FragmentDefinition) ([]*ast.FragmentDefinition, *operationreport.Report) {
	report := &operationreport.Report{}
	seen := make(map[string]bool)
	var closure []*ast.FragmentDefinition

	for _, sel := range op.SelectionSet.Selections {
		for _, frag := range fragmentClosure(sel, fragments, report) {
			if !seen[frag.Name] {
				seen[frag.Name] = true
				closure = append(closure, frag)
			}
		}
	}
	return closure, report
}

func filterVariableDefinitions(all []*ast.VariableDefinition, referenced map[string]bool) []*ast.VariableDefinition {
	var out []*ast.VariableDefinition
	for _, def := range all {
		if referenced[def.Name] {
			out = append(out, def)
		}
	}
	return out
}
