// Package stack assembles the bounded context services shared by the API and worker processes.
package stack

import (
	"errors"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionsobs "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability"
	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

// Services bundles the instrumented application services of every bounded context.
type Services struct {
	Pets      petsports.Service
	Users     userports.Service
	Adoptions adoptionports.Service
	// Durable is true when state lives in PostgreSQL and is therefore visible to other processes.
	Durable bool
}

// NewServices wires repositories to application services. A nil db selects the in-memory adapters.
func NewServices(db *gorm.DB, tokens userports.TokenIssuer, instruments *platformobservability.Instruments) *Services {
	var (
		petRepo   petsports.Repository
		userRepo  userports.Repository
		store     adoptionports.Store
		notifier  adoptionports.Notifier
		inbox     adoptionports.Inbox
		isDurable bool
	)
	if db != nil {
		petRepo = petspostgres.NewRepository(db)
		userRepo = userpostgres.NewRepository(db)
		store = adoptionpostgres.NewStore(db)
		box := adoptionpostgres.NewMessageBox(db)
		notifier, inbox = box, box
		isDurable = true
	} else {
		memPets := petsmemory.NewRepository()
		memUsers := usermemory.NewRepository()
		petRepo, userRepo = memPets, memUsers
		store = adoptionmemory.NewStore(memPets, memUsers)
		box := adoptionmemory.NewMessageBox()
		notifier, inbox = box, box
	}

	logger := instruments.Logger
	return &Services{
		Pets: petsobs.New(
			petsapp.NewService(petRepo),
			petsobs.WithLogger(logger),
			petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
			petsobs.WithMeter(instruments.Meter("internal.pets.application")),
		),
		Users: userobs.New(
			userapp.NewService(userRepo, tokens),
			userobs.WithLogger(logger),
			userobs.WithTracer(instruments.Tracer("internal.users.application")),
			userobs.WithMeter(instruments.Meter("internal.users.application")),
		),
		Adoptions: adoptionsobs.New(
			adoptionapp.NewService(store, notifier, inbox),
			adoptionsobs.WithLogger(logger),
			adoptionsobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
			adoptionsobs.WithMeter(instruments.Meter("internal.adoptions.application")),
		),
		Durable: isDurable,
	}
}

// TemporalOptions selects the Temporal frontend.
type TemporalOptions struct {
	Address   string
	Namespace string
	Disabled  bool
}

// ErrTemporalDisabled is returned by DialTemporal when Temporal is switched off.
var ErrTemporalDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// DialTemporal connects a Temporal client with tracing and structured logging.
func DialTemporal(opts TemporalOptions, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if opts.Disabled {
		return nil, ErrTemporalDisabled
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  opts.Address,
		Namespace: opts.Namespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
