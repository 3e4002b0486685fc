package adoptions

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/temporal/sequences"
)

const (
	// DecisionWorkflowName is the public identifier for registering the workflow.
	DecisionWorkflowName = "adoptions.workflows.Decision"
	// DecisionTaskQueue is the queue consumed by the worker processing adoption decisions.
	DecisionTaskQueue = "ADOPTION_DECISIONS"
)

// DecisionWorkflowInput captures the decision plus the caller's trace id.
type DecisionWorkflowInput struct {
	Command ports.DecideInput
	TraceID string
}

// DecisionWorkflow applies an administrator decision and notifies the applicants.
func DecisionWorkflow(ctx workflow.Context, input DecisionWorkflowInput) (*ports.DecisionOutcome, error) {
	logger := workflow.GetLogger(ctx)
	applicationID := input.Command.ApplicationID
	logger.Info("DecisionWorkflow started", withTraceID(input.TraceID, "applicationId", applicationID)...)
	outcome, err := sequences.RunDecisionSequence(ctx, input.Command)
	if err != nil && outcome == nil {
		logger.Error("DecisionWorkflow failed", withTraceID(input.TraceID, "applicationId", applicationID, "error", err)...)
		return nil, err
	}
	if err != nil {
		// the decision is committed; notification exhausted its retries
		logger.Warn("DecisionWorkflow completed without notification", withTraceID(input.TraceID, "applicationId", applicationID, "error", err)...)
		return outcome, nil
	}
	logger.Info("DecisionWorkflow completed", withTraceID(input.TraceID, "applicationId", applicationID)...)
	return outcome, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
