package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
)

// RunDecisionSequence decides the application and then notifies the applicants.
// A notification failure does not undo the committed decision; the outcome is
// returned alongside the error. A decision replayed under a caller-supplied
// idempotency key is not announced again.
func RunDecisionSequence(ctx workflow.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("decision sequence started", "applicationId", input.ApplicationID, "decision", input.Status)
	decideOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}

	var outcome ports.DecisionOutcome
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, decideOptions), adoptionactivities.DecideApplicationActivityName, input).Get(ctx, &outcome)
	if err != nil {
		logger.Error("decision sequence failed", "applicationId", input.ApplicationID, "error", err)
		return nil, err
	}
	logger.Info("decision sequence decided", "applicationId", input.ApplicationID, "autoRejected", len(outcome.AutoRejected))
	if outcome.Replayed && input.IdempotencyKey != "" {
		// the run that recorded this caller key already notified
		logger.Info("decision sequence replayed recorded decision; skipping notification", "applicationId", input.ApplicationID)
		return &outcome, nil
	}

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, notifyOptions), adoptionactivities.NotifyApplicantsActivityName, outcome).Get(ctx, nil); err != nil {
		logger.Error("decision sequence notification failed", "applicationId", input.ApplicationID, "error", err)
		return &outcome, err
	}
	logger.Info("decision sequence notified", "applicationId", input.ApplicationID)
	return &outcome, nil
}
