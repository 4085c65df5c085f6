package astparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeql/partitioner/pkg/ast"
)

func TestParseShorthandQuery(t *testing.T) {
	doc, report := Parse(`{ matchupAnalysis(homeTeamAbbrev:"A",awayTeamAbbrev:"B",sportType:NFL){ somePrediction { id confidencePercent } } }`)
	require.False(t, report.HasErrors())
	require.Len(t, doc.Operations, 1)

	op := doc.Operations[0]
	assert.Equal(t, ast.Query, op.OperationType)
	require.Len(t, op.SelectionSet.Selections, 1)

	field := op.SelectionSet.Selections[0].Field
	assert.Equal(t, "matchupAnalysis", field.Name)
	require.Len(t, field.Arguments, 3)
	assert.Equal(t, "homeTeamAbbrev", field.Arguments[0].Name)
	assert.Equal(t, ast.StringValue, field.Arguments[0].Value.Kind)
	assert.Equal(t, "A", field.Arguments[0].Value.StringVal)
	assert.Equal(t, ast.EnumValue, field.Arguments[2].Value.Kind)
	assert.Equal(t, "NFL", field.Arguments[2].Value.Raw)
}

func TestParseNamedOperationWithVariables(t *testing.T) {
	doc, report := Parse(`query MatchupAnalysisQuery($weekNumber: Int = 1, $ids: [ID!]!) {
		home: matchupAnalysis(week: $weekNumber) { id }
	}`)
	require.False(t, report.HasErrors())
	require.Len(t, doc.Operations, 1)

	op := doc.Operations[0]
	assert.Equal(t, "MatchupAnalysisQuery", op.Name)
	require.Len(t, op.VariableDefinitions, 2)

	weekDef := op.VariableDefinitions[0]
	assert.Equal(t, "weekNumber", weekDef.Name)
	assert.Equal(t, ast.NamedType, weekDef.Type.Kind)
	assert.Equal(t, "Int", weekDef.Type.Name)
	require.NotNil(t, weekDef.Default)
	assert.Equal(t, "1", weekDef.Default.Raw)

	idsDef := op.VariableDefinitions[1]
	assert.Equal(t, ast.NonNullType, idsDef.Type.Kind)
	assert.Equal(t, ast.ListType, idsDef.Type.OfType.Kind)
	assert.Equal(t, ast.NonNullType, idsDef.Type.OfType.OfType.Kind)
	assert.Equal(t, "ID", idsDef.Type.OfType.OfType.OfType.Name)

	field := op.SelectionSet.Selections[0].Field
	assert.Equal(t, "home", field.Alias)
	assert.Equal(t, "matchupAnalysis", field.Name)
}

func TestParseFragmentSpreadAndInlineFragment(t *testing.T) {
	doc, report := Parse(`
		query Q {
			matchupAnalysis {
				...MaTeamInfo
				... on HomeTeam @include(if: true) {
					record
				}
			}
		}
		fragment MaTeamInfo on MatchupAnalysisTeamAnalysis {
			teamName
		}
	`)
	require.False(t, report.HasErrors())
	require.Len(t, doc.Fragments, 1)
	assert.Equal(t, "MaTeamInfo", doc.Fragments[0].Name)
	assert.Equal(t, "MatchupAnalysisTeamAnalysis", doc.Fragments[0].TypeCondition)

	root := doc.Operations[0].SelectionSet.Selections[0].Field.SelectionSet.Selections
	require.Len(t, root, 2)
	assert.Equal(t, ast.FragmentSpreadSelection, root[0].Kind)
	assert.Equal(t, "MaTeamInfo", root[0].FragmentSpread.FragmentName)

	assert.Equal(t, ast.InlineFragmentSelection, root[1].Kind)
	assert.Equal(t, "HomeTeam", root[1].InlineFragment.TypeCondition)
	require.Len(t, root[1].InlineFragment.Directives, 1)
	assert.Equal(t, "include", root[1].InlineFragment.Directives[0].Name)
}

func TestParseMutationOperation(t *testing.T) {
	doc, report := Parse(`mutation M { submitPick(pick: "home") { id } }`)
	require.False(t, report.HasErrors())
	assert.Equal(t, ast.Mutation, doc.Operations[0].OperationType)
}

func TestParseValueKinds(t *testing.T) {
	doc, report := Parse(`{
		field(i: 1, f: 1.5, s: "str", b: true, n: null, e: ENUM_VAL, l: [1, 2], o: {k: "v"}, v: $var)
	}`)
	require.False(t, report.HasErrors())
	args := doc.Operations[0].SelectionSet.Selections[0].Field.Arguments
	require.Len(t, args, 9)
	assert.Equal(t, ast.IntValue, args[0].Value.Kind)
	assert.Equal(t, ast.FloatValue, args[1].Value.Kind)
	assert.Equal(t, ast.StringValue, args[2].Value.Kind)
	assert.Equal(t, ast.BooleanValue, args[3].Value.Kind)
	assert.True(t, args[3].Value.BooleanVal)
	assert.Equal(t, ast.NullValue, args[4].Value.Kind)
	assert.Equal(t, ast.EnumValue, args[5].Value.Kind)
	assert.Equal(t, ast.ListValue, args[6].Value.Kind)
	require.Len(t, args[6].Value.ListVal, 2)
	assert.Equal(t, ast.ObjectValue, args[7].Value.Kind)
	require.Len(t, args[7].Value.ObjectVal, 1)
	assert.Equal(t, "k", args[7].Value.ObjectVal[0].Name)
}

func TestParseSyntaxError(t *testing.T) {
	doc, report := Parse(`{ field(`)
	assert.Nil(t, doc)
	require.True(t, report.HasErrors())
}
