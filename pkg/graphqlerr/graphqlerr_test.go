package graphqlerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeql/partitioner/pkg/operationreport"
)

func TestFromReportConvertsExternalErrors(t *testing.T) {
	var report operationreport.Report
	report.AddExternalError(operationreport.ExternalError{
		Kind:    operationreport.DuplicateResponseKey,
		Message: "duplicate response key",
		Path:    operationreport.Path{{Name: "home"}, {Index: 2, IsIndex: true}},
	})

	resp := FromReport(&report)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "duplicate response key", resp.Errors[0].Message)
	assert.Equal(t, []any{"home", 2}, resp.Errors[0].Path)
}

func TestFromMessageBuildsSingleError(t *testing.T) {
	resp := FromMessage("origin unreachable")
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "origin unreachable", resp.Errors[0].Message)
	assert.Nil(t, resp.Errors[0].Path)
}
