package temporal

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DigestWorkflow runs a single digest tick (the fourteen-step
// sequence implemented as game.Service.AdvanceDigest). It is meant to
// be driven by a Temporal schedule at the configured tick interval
// rather than looping internally: the daemon entrypoint creates a
// ScheduleClient interval schedule targeting this workflow.
func DigestWorkflow(ctx workflow.Context, req DigestRequest) (DigestResult, error) {
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *Activities
	var result DigestResult
	if err := workflow.ExecuteActivity(ctx, a.AdvanceDigestActivity).Get(ctx, &result); err != nil {
		logger.Error("digest tick failed", "error", err)
		return DigestResult{}, err
	}

	logger.Info("digest tick complete", "released", result.Released)
	return result, nil
}
