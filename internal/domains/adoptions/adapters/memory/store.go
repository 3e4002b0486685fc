package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Store = (*Store)(nil)

// PetCatalog is the slice of the pets repository the store reads and writes.
type PetCatalog interface {
	GetByID(ctx context.Context, id int64) (*projection.Projection[*petdomain.Pet], error)
	UpdateStatus(ctx context.Context, id int64, status petdomain.Status) error
}

// UserDirectory resolves applicant display fields.
type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*userdomain.User, error)
}

// Store keeps applications in memory. A single mutex serializes units of
// work, so every transaction observes the effects of the previous one.
type Store struct {
	mu     sync.RWMutex
	apps   map[int64]*storedApplication
	nextID int64
	keys   *IdempotencyStore
	pets   PetCatalog
	users  UserDirectory
	now    func() time.Time
}

type storedApplication struct {
	app      domain.Application
	metadata projection.Metadata
}

// NewStore builds an empty store over the given pet catalog. users may be nil.
func NewStore(pets PetCatalog, users UserDirectory) *Store {
	return &Store{
		apps:  map[int64]*storedApplication{},
		keys:  NewIdempotencyStore(),
		pets:  pets,
		users: users,
		now:   time.Now,
	}
}

// WithClock overrides the timestamp source.
func (s *Store) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.keys.WithClock(now)
	s.mu.Unlock()
}

// InTx runs fn against a staged copy of the applications and idempotency keys
// and commits both together with any pet status changes when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if s.pets == nil {
		return errors.New("adoption store has no pet catalog")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:     s,
		apps:      make(map[int64]*storedApplication, len(s.apps)),
		nextID:    s.nextID,
		keys:      s.keys.staged(),
		petStatus: map[int64]petdomain.Status{},
		now:       s.now(),
	}
	for id, stored := range s.apps {
		copy := *stored
		tx.apps[id] = &copy
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for petID, status := range tx.petStatus {
		if err := s.pets.UpdateStatus(ctx, petID, status); err != nil && !errors.Is(err, petports.ErrNotFound) {
			return err
		}
	}
	s.apps = tx.apps
	s.nextID = tx.nextID
	s.keys = tx.keys
	return nil
}

// List returns applications joined with their pet and applicant, newest first.
// Applications whose pet no longer exists are omitted.
func (s *Store) List(ctx context.Context, filter ports.ListFilter) ([]*ports.ApplicationView, error) {
	allowed := make(map[domain.Status]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		allowed[status] = struct{}{}
	}

	s.mu.RLock()
	matched := make([]storedApplication, 0, len(s.apps))
	for _, stored := range s.apps {
		if filter.UserID != 0 && stored.app.UserID != filter.UserID {
			continue
		}
		if filter.PetID != 0 && stored.app.PetID != filter.PetID {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[stored.app.Status]; !ok {
				continue
			}
		}
		matched = append(matched, *stored)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].metadata.CreatedAt, matched[j].metadata.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return matched[i].app.ID > matched[j].app.ID
	})

	applicants, err := s.applicants(ctx, matched)
	if err != nil {
		return nil, err
	}
	views := make([]*ports.ApplicationView, 0, len(matched))
	for i := range matched {
		pet, err := s.pets.GetByID(ctx, matched[i].app.PetID)
		if errors.Is(err, petports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		view := &ports.ApplicationView{
			Application: matched[i].projection(),
			Pet:         snapshot(pet.Entity),
		}
		if user, ok := applicants[matched[i].app.UserID]; ok {
			view.Applicant = ports.ApplicantSummary{ID: user.ID, Name: user.Name, Email: user.Email}
		} else {
			view.Applicant = ports.ApplicantSummary{ID: matched[i].app.UserID}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) applicants(ctx context.Context, apps []storedApplication) (map[int64]*userdomain.User, error) {
	if s.users == nil || len(apps) == 0 {
		return map[int64]*userdomain.User{}, nil
	}
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(apps))
	for i := range apps {
		if _, ok := seen[apps[i].app.UserID]; ok {
			continue
		}
		seen[apps[i].app.UserID] = struct{}{}
		ids = append(ids, apps[i].app.UserID)
	}
	return s.users.FindByIDs(ctx, ids)
}

type memoryTx struct {
	store     *Store
	apps      map[int64]*storedApplication
	nextID    int64
	keys      *IdempotencyStore
	petStatus map[int64]petdomain.Status
	now       time.Time
}

func (t *memoryTx) LockPet(ctx context.Context, petID int64) (*ports.PetSnapshot, error) {
	pet, err := t.store.pets.GetByID(ctx, petID)
	if errors.Is(err, petports.ErrNotFound) {
		return nil, ports.ErrPetNotFound
	}
	if err != nil {
		return nil, err
	}
	snap := snapshot(pet.Entity)
	if staged, ok := t.petStatus[petID]; ok {
		snap.Status = staged
	}
	return &snap, nil
}

func (t *memoryTx) SetPetStatus(_ context.Context, petID int64, status petdomain.Status) error {
	if !status.Valid() {
		return petdomain.ErrInvalidStatus
	}
	t.petStatus[petID] = status
	return nil
}

func (t *memoryTx) GetApplication(_ context.Context, id int64) (*ports.ApplicationProjection, error) {
	stored, ok := t.apps[id]
	if !ok {
		return nil, ports.ErrApplicationNotFound
	}
	return stored.projection(), nil
}

func (t *memoryTx) HasApplication(_ context.Context, userID, petID int64) (bool, error) {
	for _, stored := range t.apps {
		if stored.app.UserID == userID && stored.app.PetID == petID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) InsertApplication(_ context.Context, app *domain.Application) (*ports.ApplicationProjection, error) {
	if app == nil {
		return nil, errors.New("application is nil")
	}
	t.nextID++
	app.ID = t.nextID
	stored := &storedApplication{app: *app, metadata: projection.Created(t.now)}
	t.apps[app.ID] = stored
	return stored.projection(), nil
}

func (t *memoryTx) UpdateApplicationStatus(_ context.Context, id int64, status domain.Status) (*ports.ApplicationProjection, error) {
	stored, ok := t.apps[id]
	if !ok {
		return nil, ports.ErrApplicationNotFound
	}
	if status == domain.StatusApproved {
		for otherID, other := range t.apps {
			if otherID != id && other.app.PetID == stored.app.PetID && other.app.Status == domain.StatusApproved {
				return nil, domain.ErrPetAlreadyAdopted
			}
		}
	}
	stored.app.Status = status
	stored.metadata.Touch(t.now)
	return stored.projection(), nil
}

func (t *memoryTx) RejectPendingSiblings(_ context.Context, petID, exceptID int64) ([]ports.AutoRejection, error) {
	var rejected []ports.AutoRejection
	for id, stored := range t.apps {
		if id == exceptID || stored.app.PetID != petID || stored.app.Status != domain.StatusPending {
			continue
		}
		stored.app.Status = domain.StatusRejected
		stored.metadata.Touch(t.now)
		rejected = append(rejected, ports.AutoRejection{ApplicationID: id, UserID: stored.app.UserID})
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].ApplicationID < rejected[j].ApplicationID })
	return rejected, nil
}

func (t *memoryTx) CountPending(_ context.Context, petID int64) (int, error) {
	count := 0
	for _, stored := range t.apps {
		if stored.app.PetID == petID && stored.app.Status == domain.StatusPending {
			count++
		}
	}
	return count, nil
}

func (t *memoryTx) DeleteApplication(_ context.Context, id int64) error {
	if _, ok := t.apps[id]; !ok {
		return ports.ErrApplicationNotFound
	}
	delete(t.apps, id)
	return nil
}

func (t *memoryTx) Idempotency() ports.IdempotencyStore {
	return t.keys
}

func (s *storedApplication) projection() *ports.ApplicationProjection {
	copy := s.app
	return projection.New(&copy, s.metadata.CreatedAt, s.metadata.UpdatedAt)
}

func snapshot(pet *petdomain.Pet) ports.PetSnapshot {
	return ports.PetSnapshot{
		ID:      pet.ID,
		Name:    pet.Name,
		Species: pet.Species,
		Breed:   pet.Breed,
		Status:  pet.Status,
	}
}
