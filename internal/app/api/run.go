package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	adoptionserver "github.com/Apurer/pet-adoption-api/go"

	"github.com/Apurer/pet-adoption-api/internal/app/stack"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/workflows"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

const serviceName = "pet-adoption-api"

// Run boots the adoption HTTP API with observability, repositories, and workflows wired.
// It blocks until ctx is cancelled, then drains in-flight requests.
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

	if cfg.RunMigrations {
		if err := migrations.Up(cfg.PostgresDSN); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}
	db, cleanupDB := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to configure token manager: %w", err)
	}
	services := stack.NewServices(db, tokens, instruments)
	if err := seedAdmin(ctx, services.Users, cfg, logger); err != nil {
		return err
	}

	decisions, cleanupWorkflows := buildDecisionWorkflows(cfg, services, instruments)
	defer cleanupWorkflows()

	responder := adoptionserver.NewResponder("")
	handlers := adoptionserver.ApiHandleFunctions{
		AuthAPI:     adoptionserver.NewAuthAPI(services.Users, responder),
		PetAPI:      adoptionserver.NewPetAPI(services.Pets, responder),
		AdoptionAPI: adoptionserver.NewAdoptionAPI(services.Adoptions, decisions, responder),
		MessageAPI:  adoptionserver.NewMessageAPI(services.Adoptions, responder),
	}
	router := adoptionserver.NewRouter(handlers, adoptionserver.RouterOptions{
		Verifier:      tokens,
		Responder:     responder,
		Logger:        logger,
		SubmitLimiter: adoptionserver.NewRateLimiter(cfg.AdoptRatePerMinute).Middleware(responder),
		Metrics:       instruments.MetricsHandler(),
		Middleware:    []gin.HandlerFunc{otelgin.Middleware(serviceName)},
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("adoption API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("adoption API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down adoption API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func seedAdmin(ctx context.Context, users userports.Service, cfg Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		logger.Warn("ADMIN_EMAIL not set, no administrator account seeded")
		return nil
	}
	admin, err := users.EnsureAdmin(ctx, userports.RegisterInput{
		Name:     "Administrator",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	logger.Info("administrator account ready", slog.Int64("user.id", admin.Entity.ID))
	return nil
}

// buildDecisionWorkflows prefers Temporal. The worker only shares state with the API through
// PostgreSQL, so the in-memory backend always decides inline.
func buildDecisionWorkflows(cfg Config, services *stack.Services, instruments *platformobservability.Instruments) (adoptionports.WorkflowOrchestrator, func()) {
	logger := instruments.Logger
	inline := adoptionworkflows.NewInlineDecisionWorkflows(services.Adoptions, logger)
	if !services.Durable {
		logger.Warn("Temporal decisions need postgres, running decisions inline")
		return inline, func() {}
	}
	temporalClient, err := stack.DialTemporal(stack.TemporalOptions{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments, "temporal-client")
	if err != nil {
		logger.Warn("Temporal workflows unavailable, running decisions inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return adoptionworkflows.NewTemporalDecisionWorkflows(temporalClient), temporalClient.Close
}
