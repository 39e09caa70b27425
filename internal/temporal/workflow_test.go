package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func TestDigestWorkflowReturnsActivityResult(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	var a *Activities
	env.OnActivity(a.AdvanceDigestActivity).Return(DigestResult{Released: 3}, nil)

	env.ExecuteWorkflow(DigestWorkflow, DigestRequest{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result DigestResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 3, result.Released)
}

func TestDigestWorkflowPropagatesActivityFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	var a *Activities
	env.OnActivity(a.AdvanceDigestActivity).Return(DigestResult{}, assertError("digest failed"))

	env.ExecuteWorkflow(DigestWorkflow, DigestRequest{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}

type assertError string

func (e assertError) Error() string { return string(e) }
