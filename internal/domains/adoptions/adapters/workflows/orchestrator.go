package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/adoptions"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalDecisionWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineDecisionWorkflows)(nil)
)

// TemporalDecisionWorkflows runs adoption decisions on a Temporal cluster.
type TemporalDecisionWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDecisionWorkflows wires a Temporal client into the orchestrator.
func NewTemporalDecisionWorkflows(c client.Client) *TemporalDecisionWorkflows {
	return &TemporalDecisionWorkflows{client: c, taskQueue: adoptionworkflows.DecisionTaskQueue}
}

// DecideApplication starts the decision workflow and waits for its outcome.
// One workflow id per application rejects a second concurrent decision.
func (o *TemporalDecisionWorkflows) DecideApplication(ctx context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal decision workflows not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                                       DecisionWorkflowID(input.ApplicationID),
		TaskQueue:                                o.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		adoptionworkflows.DecisionWorkflowName,
		adoptionworkflows.DecisionWorkflowInput{Command: input, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: decision already in progress", application.ErrConflict)
		}
		return nil, err
	}
	var outcome ports.DecisionOutcome
	if err := run.Get(ctx, &outcome); err != nil {
		return nil, adoptionactivities.DecodeError(err)
	}
	return &outcome, nil
}

// DecisionWorkflowID names the workflow deciding applicationID.
func DecisionWorkflowID(applicationID int64) string {
	return fmt.Sprintf("adoption-decision-%d", applicationID)
}

// InlineDecisionWorkflows decides and notifies synchronously without Temporal.
type InlineDecisionWorkflows struct {
	service ports.Service
	logger  *slog.Logger
}

// NewInlineDecisionWorkflows wraps the lifecycle manager for synchronous execution.
func NewInlineDecisionWorkflows(service ports.Service, logger *slog.Logger) *InlineDecisionWorkflows {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InlineDecisionWorkflows{service: service, logger: logger}
}

// DecideApplication applies the decision then notifies; a notification failure is only logged.
// A replayed decision was already announced by the request that applied it.
func (o *InlineDecisionWorkflows) DecideApplication(ctx context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline decision workflows not configured")
	}
	outcome, err := o.service.Decide(ctx, input)
	if err != nil {
		return nil, err
	}
	if outcome.Replayed {
		return outcome, nil
	}
	if err := o.service.NotifyDecision(ctx, *outcome); err != nil {
		o.logger.WarnContext(ctx, "failed to notify applicants",
			slog.Int64("application.id", input.ApplicationID),
			slog.String("error", err.Error()),
		)
	}
	return outcome, nil
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
