// Package worker runs the Temporal worker that executes adoption decision workflows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pet-adoption-api/internal/app/stack"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/platform/temporal/activities/adoptions"
	adoptionwf "github.com/Apurer/pet-adoption-api/internal/platform/temporal/workflows/adoptions"
)

const serviceName = "pet-adoption-worker"

// Run polls the decision task queue until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("worker failed to connect to postgres: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	// Activities never issue tokens.
	services := stack.NewServices(db, nil, instruments)
	activities := adoptionactivities.NewActivities(services.Adoptions)

	temporalClient, err := stack.DialTemporal(stack.TemporalOptions{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	w := sdkworker.New(temporalClient, adoptionwf.DecisionTaskQueue, sdkworker.Options{})
	w.RegisterWorkflowWithOptions(adoptionwf.DecisionWorkflow, workflow.RegisterOptions{Name: adoptionwf.DecisionWorkflowName})
	w.RegisterActivityWithOptions(activities.DecideApplication, activity.RegisterOptions{Name: adoptionactivities.DecideApplicationActivityName})
	w.RegisterActivityWithOptions(activities.NotifyApplicants, activity.RegisterOptions{Name: adoptionactivities.NotifyApplicantsActivityName})

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	logger.Info("worker listening", slog.String("taskQueue", adoptionwf.DecisionTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
