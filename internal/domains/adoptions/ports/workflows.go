package ports

import "context"

// WorkflowOrchestrator runs the decision flow, durably when a workflow engine is available.
type WorkflowOrchestrator interface {
	DecideApplication(ctx context.Context, input DecideInput) (*DecisionOutcome, error)
}
