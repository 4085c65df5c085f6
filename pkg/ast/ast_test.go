package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentLookupsByName(t *testing.T) {
	op := &OperationDefinition{Name: "GetHome"}
	frag := &FragmentDefinition{Name: "Stats"}
	doc := &Document{Operations: []*OperationDefinition{op}, Fragments: []*FragmentDefinition{frag}}

	assert.Same(t, op, doc.OperationByName("GetHome"))
	assert.Nil(t, doc.OperationByName("Missing"))
	assert.Same(t, frag, doc.FragmentByName("Stats"))
	assert.Nil(t, doc.FragmentByName("Missing"))
}

func TestFieldResponseKeyPrefersAlias(t *testing.T) {
	aliased := &Field{Alias: "home", Name: "matchupAnalysis"}
	assert.Equal(t, "home", aliased.ResponseKey())

	plain := &Field{Name: "matchupAnalysis"}
	assert.Equal(t, "matchupAnalysis", plain.ResponseKey())
}

func TestTypeStringRendersWrappers(t *testing.T) {
	named := &Type{Kind: NamedType, Name: "Int"}
	assert.Equal(t, "Int", named.String())

	list := &Type{Kind: ListType, OfType: named}
	assert.Equal(t, "[Int]", list.String())

	nonNullList := &Type{Kind: NonNullType, OfType: list}
	assert.Equal(t, "[Int]!", nonNullList.String())
}

func TestOperationTypeString(t *testing.T) {
	assert.Equal(t, "query", Query.String())
	assert.Equal(t, "mutation", Mutation.String())
	assert.Equal(t, "subscription", Subscription.String())
}
