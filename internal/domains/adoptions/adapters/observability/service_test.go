package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

type stubService struct {
	ports.Service
	decideErr error
}

func (s stubService) Decide(_ context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	if s.decideErr != nil {
		return nil, s.decideErr
	}
	app := &domain.Application{ID: input.ApplicationID, Status: domain.Status(input.Status)}
	return &ports.DecisionOutcome{
		Application:  projection.New(app, time.Time{}, time.Time{}),
		AutoRejected: []ports.AutoRejection{{ApplicationID: 2, UserID: 7}, {ApplicationID: 3, UserID: 8}},
	}, nil
}

func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, point := range sum.DataPoints {
				totals[m.Name] += point.Value
			}
		}
	}
	return totals
}

func TestDecide_RecordsDecisionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc := New(stubService{}, WithMeter(provider.Meter("test")))

	_, err := svc.Decide(context.Background(), ports.DecideInput{ApplicationID: 1, Status: "approved"})
	require.NoError(t, err)

	totals := counterTotals(t, reader)
	require.Equal(t, int64(1), totals["adoptions.service.decided"])
	require.Equal(t, int64(2), totals["adoptions.service.siblings_rejected"])
}

func TestDecide_PropagatesErrorsWithoutMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	boom := errors.New("boom")
	svc := New(stubService{decideErr: boom}, WithMeter(provider.Meter("test")), WithLogger(nil))

	_, err := svc.Decide(context.Background(), ports.DecideInput{ApplicationID: 1, Status: "approved"})
	require.ErrorIs(t, err, boom)
	require.Zero(t, counterTotals(t, reader)["adoptions.service.decided"])
}
