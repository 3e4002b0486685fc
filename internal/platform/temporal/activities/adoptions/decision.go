package adoptions

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

const (
	// DecideApplicationActivityName applies an administrator decision in one unit of work.
	DecideApplicationActivityName = "adoptions.activities.DecideApplication"
	// NotifyApplicantsActivityName delivers decision messages to the affected applicants.
	NotifyApplicantsActivityName = "adoptions.activities.NotifyApplicants"
)

// Activities groups activities that operate on the adoptions bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the lifecycle manager into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// DecideApplication runs the decision. Domain failures are returned as
// non-retryable application errors so the workflow fails fast. Without a
// caller key the decision is keyed by workflow run, so a retry after a
// committed attempt replays the recorded outcome.
func (a *Activities) DecideApplication(ctx context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("decide activity not initialized", "applicationId", input.ApplicationID)
		return nil, errors.New("decide activity not initialized")
	}
	if input.IdempotencyKey == "" {
		execution := activity.GetInfo(ctx).WorkflowExecution
		input.IdempotencyKey = RunIdempotencyKey(execution.ID, execution.RunID)
	}
	logger.Info("DecideApplication activity started", "applicationId", input.ApplicationID, "decision", input.Status)
	outcome, err := a.service.Decide(ctx, input)
	if err != nil {
		logger.Error("DecideApplication activity failed", "applicationId", input.ApplicationID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("DecideApplication activity completed",
		"applicationId", input.ApplicationID,
		"petStatus", string(outcome.Pet.Status),
		"autoRejected", len(outcome.AutoRejected),
	)
	return outcome, nil
}

// RunIdempotencyKey keys a decision by the workflow run that applies it.
func RunIdempotencyKey(workflowID, runID string) string {
	return fmt.Sprintf("workflow:%s:%s", workflowID, runID)
}

// NotifyApplicants informs the decided applicant and every auto-rejected sibling.
func (a *Activities) NotifyApplicants(ctx context.Context, outcome ports.DecisionOutcome) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("notify activity not initialized")
		return errors.New("notify activity not initialized")
	}
	var applicationID int64
	if outcome.Application != nil && outcome.Application.Entity != nil {
		applicationID = outcome.Application.Entity.ID
	}

	var hb notifyHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("NotifyApplicants already completed in prior attempt; skipping", "applicationId", applicationID)
		return nil
	}

	logger.Info("NotifyApplicants activity started", "applicationId", applicationID, "recipients", 1+len(outcome.AutoRejected))
	if err := a.service.NotifyDecision(ctx, outcome); err != nil {
		logger.Error("NotifyApplicants activity failed", "applicationId", applicationID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, notifyHeartbeat{Completed: true})
	logger.Info("NotifyApplicants activity completed", "applicationId", applicationID)
	return nil
}

type notifyHeartbeat struct {
	Completed bool
}
