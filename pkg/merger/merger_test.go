package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/edgeql/partitioner/pkg/executor"
	"github.com/edgeql/partitioner/pkg/partition"
)

func TestMergeRoundTripsSuccessfulSubResponses(t *testing.T) {
	plan := partition.Plan{
		{ResponseKey: "home", SubQueryName: "q_0"},
		{ResponseKey: "away", SubQueryName: "q_1"},
	}
	results := []executor.Result{
		{ResponseKey: "home", RawBody: []byte(`{"data":{"home":{"id":1}}}`)},
		{ResponseKey: "away", RawBody: []byte(`{"data":{"away":{"id":2}}}`)},
	}

	body, status, err := Merge(plan, results)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"data":{"home":{"id":1},"away":{"id":2}}}`, string(body))
}

func TestMergeIsolatesOneFailure(t *testing.T) {
	plan := partition.Plan{
		{ResponseKey: "home", SubQueryName: "q_0"},
		{ResponseKey: "away", SubQueryName: "q_1"},
	}
	results := []executor.Result{
		{ResponseKey: "home", RawBody: []byte(`{"data":{"home":{"id":1}}}`)},
		{ResponseKey: "away", Err: &executor.FetchError{Kind: executor.Timeout, Message: "sub-request timed out"}},
	}

	body, status, err := Merge(plan, results)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(1), gjson.GetBytes(body, "data.home.id").Num)
	assert.False(t, gjson.GetBytes(body, "data.away").IsObject())
	require.True(t, gjson.GetBytes(body, "errors").IsArray())
	assert.Len(t, gjson.GetBytes(body, "errors").Array(), 1)
	assert.Contains(t, gjson.GetBytes(body, "errors.0.message").String(), "away")
}

func TestMergeReturns502WhenAllSubRequestsFail(t *testing.T) {
	plan := partition.Plan{{ResponseKey: "home", SubQueryName: "q_0"}}
	results := []executor.Result{
		{ResponseKey: "home", Err: &executor.FetchError{Kind: executor.Network, Message: "dial failed"}},
	}

	body, status, err := Merge(plan, results)
	require.NoError(t, err)
	assert.Equal(t, 502, status)
	require.True(t, gjson.GetBytes(body, "errors").IsArray())
	assert.Len(t, gjson.GetBytes(body, "errors").Array(), 1)
}

func TestMergeConcatenatesSubResponseErrors(t *testing.T) {
	plan := partition.Plan{{ResponseKey: "home", SubQueryName: "q_0"}}
	results := []executor.Result{
		{ResponseKey: "home", RawBody: []byte(`{"data":{"home":null},"errors":[{"message":"field error","path":["home","id"]}]}`)},
	}

	body, _, err := Merge(plan, results)
	require.NoError(t, err)
	errs := gjson.GetBytes(body, "errors").Array()
	require.Len(t, errs, 1)
	assert.Equal(t, "field error", errs[0].Get("message").String())
}

func TestMergeShallowMergesExtensionsLastWins(t *testing.T) {
	plan := partition.Plan{
		{ResponseKey: "home", SubQueryName: "q_0"},
		{ResponseKey: "away", SubQueryName: "q_1"},
	}
	results := []executor.Result{
		{ResponseKey: "home", RawBody: []byte(`{"data":{"home":1},"extensions":{"trace":"a","shared":"first"}}`)},
		{ResponseKey: "away", RawBody: []byte(`{"data":{"away":2},"extensions":{"shared":"second"}}`)},
	}

	body, _, err := Merge(plan, results)
	require.NoError(t, err)
	assert.Equal(t, "a", gjson.GetBytes(body, "extensions.trace").String())
	assert.Equal(t, "second", gjson.GetBytes(body, "extensions.shared").String())
}

func TestMergeOmitsErrorsAndExtensionsWhenAbsent(t *testing.T) {
	plan := partition.Plan{{ResponseKey: "home", SubQueryName: "q_0"}}
	results := []executor.Result{
		{ResponseKey: "home", RawBody: []byte(`{"data":{"home":1}}`)},
	}

	body, _, err := Merge(plan, results)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(body, "errors").Exists())
	assert.False(t, gjson.GetBytes(body, "extensions").Exists())
}
