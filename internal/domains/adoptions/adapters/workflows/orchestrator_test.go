package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

type fakeService struct {
	ports.Service
	decideErr error
	notifyErr error
	replayed  bool
	notified  []ports.DecisionOutcome
}

func (f *fakeService) Decide(_ context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	app := &domain.Application{ID: input.ApplicationID, Status: domain.Status(input.Status)}
	return &ports.DecisionOutcome{Application: &projection.Projection[*domain.Application]{Entity: app}, Replayed: f.replayed}, nil
}

func (f *fakeService) NotifyDecision(_ context.Context, outcome ports.DecisionOutcome) error {
	f.notified = append(f.notified, outcome)
	return f.notifyErr
}

func TestInline_DecidesThenNotifies(t *testing.T) {
	svc := &fakeService{}
	outcome, err := NewInlineDecisionWorkflows(svc, nil).DecideApplication(context.Background(), ports.DecideInput{ApplicationID: 3, Status: "approved"})
	require.NoError(t, err)
	require.Equal(t, int64(3), outcome.Application.Entity.ID)
	require.Len(t, svc.notified, 1)
}

func TestInline_NotificationFailureIsNotSurfaced(t *testing.T) {
	svc := &fakeService{notifyErr: errors.New("smtp down")}
	outcome, err := NewInlineDecisionWorkflows(svc, nil).DecideApplication(context.Background(), ports.DecideInput{ApplicationID: 3, Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, outcome.Application.Entity.Status)
}

func TestInline_DecisionErrorSkipsNotification(t *testing.T) {
	svc := &fakeService{decideErr: ports.ErrApplicationNotFound}
	_, err := NewInlineDecisionWorkflows(svc, nil).DecideApplication(context.Background(), ports.DecideInput{ApplicationID: 3, Status: "approved"})
	require.ErrorIs(t, err, ports.ErrApplicationNotFound)
	require.Empty(t, svc.notified)
}

func TestInline_ReplayedDecisionIsNotAnnouncedAgain(t *testing.T) {
	svc := &fakeService{replayed: true}
	outcome, err := NewInlineDecisionWorkflows(svc, nil).DecideApplication(context.Background(), ports.DecideInput{ApplicationID: 3, Status: "approved", IdempotencyKey: "k"})
	require.NoError(t, err)
	require.True(t, outcome.Replayed)
	require.Empty(t, svc.notified)
}

func TestDecisionWorkflowID(t *testing.T) {
	require.Equal(t, "adoption-decision-42", DecisionWorkflowID(42))
}
