package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/astparser"
	"github.com/edgeql/partitioner/pkg/operationreport"
)

func parse(t *testing.T, src string) (*ast.OperationDefinition, map[string]*ast.FragmentDefinition) {
	t.Helper()
	doc, report := astparser.Parse(src)
	require.False(t, report.HasErrors(), report.Error())
	require.Len(t, doc.Operations, 1)

	fragments := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		fragments[f.Name] = f
	}
	return doc.Operations[0], fragments
}

// S1: single field query partitions into exactly one SubQuery.
func TestPartitionSingleField(t *testing.T) {
	op, fragments := parse(t, `{ matchupAnalysis { id } }`)
	result, report := Partition(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, result.SubQueries, 1)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, "matchupAnalysis", result.Plan[0].ResponseKey)
	assert.Equal(t, result.SubQueries[0].Name, result.Plan[0].SubQueryName)
}

// S2: aliased sibling fields each become their own SubQuery, in source order.
func TestPartitionAliasedSiblings(t *testing.T) {
	op, fragments := parse(t, `{ home: matchupAnalysis(team: "A") { id } away: matchupAnalysis(team: "B") { id } }`)
	result, report := Partition(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, result.SubQueries, 2)
	assert.Equal(t, "home", result.Plan[0].ResponseKey)
	assert.Equal(t, "away", result.Plan[1].ResponseKey)
}

// S3: a fragment shared by two sibling fields is duplicated into both
// SubQueries' independent fragment closures.
func TestPartitionSharedFragment(t *testing.T) {
	op, fragments := parse(t, `
		{
			home: matchupAnalysis(team: "A") { ...Stats }
			away: matchupAnalysis(team: "B") { ...Stats }
		}
		fragment Stats on Team { wins losses }
	`)
	result, report := Partition(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, result.SubQueries, 2)
	require.Len(t, result.SubQueries[0].Fragments, 1)
	require.Len(t, result.SubQueries[1].Fragments, 1)
	assert.Equal(t, "Stats", result.SubQueries[0].Fragments[0].Name)
	assert.Equal(t, "Stats", result.SubQueries[1].Fragments[0].Name)
}

// S6: a variable declared on the operation but unused by a given field's
// closure is excluded from that SubQuery's VariableDefinitions.
func TestPartitionUnusedVariableElimination(t *testing.T) {
	op, fragments := parse(t, `
		query Q($week: Int, $season: Int) {
			home: matchupAnalysis(week: $week) { id }
			away: standings(season: $season) { id }
		}
	`)
	result, report := Partition(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, result.SubQueries, 2)

	require.Len(t, result.SubQueries[0].VariableDefinitions, 1)
	assert.Equal(t, "week", result.SubQueries[0].VariableDefinitions[0].Name)

	require.Len(t, result.SubQueries[1].VariableDefinitions, 1)
	assert.Equal(t, "season", result.SubQueries[1].VariableDefinitions[0].Name)
}

func TestPartitionPreservesNestedInlineFragment(t *testing.T) {
	op, fragments := parse(t, `
		{
			matchupAnalysis {
				... on HomeTeam @include(if: true) {
					record
				}
			}
		}
	`)
	result, report := Partition(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, result.SubQueries, 1)

	root := result.SubQueries[0].RootSelection
	require.Equal(t, ast.FieldSelection, root.Kind)
	inner := root.Field.SelectionSet.Selections[0]
	require.Equal(t, ast.InlineFragmentSelection, inner.Kind)
	assert.Equal(t, "HomeTeam", inner.InlineFragment.TypeCondition)
	require.Len(t, inner.InlineFragment.Directives, 1)
}

func TestPartitionDuplicateResponseKey(t *testing.T) {
	op, fragments := parse(t, `{ matchupAnalysis { id } matchupAnalysis { id } }`)
	result, report := Partition(op, fragments)
	assert.Nil(t, result)
	require.True(t, report.HasErrors())
	kind, ok := report.FirstKind()
	require.True(t, ok)
	assert.Equal(t, operationreport.DuplicateResponseKey, kind)
}

func TestPartitionEmptyOperationRejected(t *testing.T) {
	op := &ast.OperationDefinition{OperationType: ast.Query, SelectionSet: &ast.SelectionSet{}}
	result, report := Partition(op, map[string]*ast.FragmentDefinition{})
	assert.Nil(t, result)
	require.True(t, report.HasErrors())
	kind, ok := report.FirstKind()
	require.True(t, ok)
	assert.Equal(t, operationreport.EmptyOperation, kind)
}

func TestPartitionUndefinedFragmentReference(t *testing.T) {
	op, fragments := parse(t, `{ matchupAnalysis { ...Missing } }`)
	result, report := Partition(op, fragments)
	assert.Nil(t, result)
	require.True(t, report.HasErrors())
	kind, ok := report.FirstKind()
	require.True(t, ok)
	assert.Equal(t, operationreport.InvalidFragmentReference, kind)
}

func TestPartitionFragmentCycleDetected(t *testing.T) {
	op, _ := parse(t, `{ matchupAnalysis { ...A } }`)
	fragments := map[string]*ast.FragmentDefinition{
		"A": {
			Name:          "A",
			TypeCondition: "Team",
			SelectionSet: &ast.SelectionSet{Selections: []*ast.Selection{
				{Kind: ast.FragmentSpreadSelection, FragmentSpread: &ast.FragmentSpread{FragmentName: "B"}},
			}},
		},
		"B": {
			Name:          "B",
			TypeCondition: "Team",
			SelectionSet: &ast.SelectionSet{Selections: []*ast.Selection{
				{Kind: ast.FragmentSpreadSelection, FragmentSpread: &ast.FragmentSpread{FragmentName: "A"}},
			}},
		},
	}
	result, report := Partition(op, fragments)
	assert.Nil(t, result)
	require.True(t, report.HasErrors())
	kind, ok := report.FirstKind()
	require.True(t, ok)
	assert.Equal(t, operationreport.InvalidFragmentReference, kind)
}

func TestFragmentClosureForOperationUnionsAcrossFields(t *testing.T) {
	op, fragments := parse(t, `
		{
			home: matchupAnalysis { ...Stats }
			away: matchupAnalysis { ...Stats }
		}
		fragment Stats on Team { wins }
	`)
	closure, report := FragmentClosureForOperation(op, fragments)
	require.False(t, report.HasErrors())
	require.Len(t, closure, 1)
	assert.Equal(t, "Stats", closure[0].Name)
}
