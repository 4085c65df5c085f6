package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupDefaultsToPartitionGeneral(t *testing.T) {
	table := Table{}
	assert.Equal(t, PartitionGeneral, table.Lookup("anything"))
	assert.Equal(t, PartitionGeneral, table.Lookup(""))
}

func TestLookupReturnsConfiguredBehavior(t *testing.T) {
	table := Table{
		"Standings":        DoNotPartition,
		"SubmitPickIntent": DoNotProcess,
	}
	assert.Equal(t, DoNotPartition, table.Lookup("Standings"))
	assert.Equal(t, DoNotProcess, table.Lookup("SubmitPickIntent"))
	assert.Equal(t, PartitionGeneral, table.Lookup("MatchupAnalysisQuery"))
}
