package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu     sync.RWMutex
	pets   map[int64]*storedPet
	nextID int64
	now    func() time.Time
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		pets: map[int64]*storedPet{},
		now:  time.Now,
	}
}

// WithClock overrides the timestamp source.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Save inserts or replaces a pet while maintaining metadata.
func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now()
	metadata := projection.Created(timestamp)
	if pet.ID == 0 {
		r.nextID++
		pet.ID = r.nextID
	} else if entry, ok := r.pets[pet.ID]; ok {
		metadata.CreatedAt = entry.metadata.CreatedAt
	}
	if pet.ID > r.nextID {
		r.nextID = pet.ID
	}

	stored := &storedPet{pet: pet.Clone(), metadata: metadata}
	r.pets[pet.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches a pet if present.
func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.Pet], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// UpdateStatus changes only the adoptability state; the adoption store uses it
// to commit staged pet transitions.
func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return ports.ErrNotFound
	}
	if err := entry.pet.UpdateStatus(status); err != nil {
		return err
	}
	entry.metadata.Touch(r.now())
	return nil
}

// Delete removes a pet.
func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

// FindByStatus filters pets by any of the supplied statuses.
func (r *Repository) FindByStatus(_ context.Context, statuses []domain.Status) ([]*projection.Projection[*domain.Pet], error) {
	allowed := make(map[domain.Status]struct{}, len(statuses))
	for _, status := range statuses {
		allowed[status] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*projection.Projection[*domain.Pet]
	for _, entry := range r.pets {
		if _, ok := allowed[entry.pet.Status]; ok {
			result = append(result, projectionCopy(entry))
		}
	}
	sortByID(result)
	return result, nil
}

// List returns every pet ordered by identifier.
func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Pet], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*projection.Projection[*domain.Pet], 0, len(r.pets))
	for _, entry := range r.pets {
		result = append(result, projectionCopy(entry))
	}
	sortByID(result)
	return result, nil
}

func projectionCopy(entry *storedPet) *projection.Projection[*domain.Pet] {
	return projection.New(entry.pet.Clone(), entry.metadata.CreatedAt, entry.metadata.UpdatedAt)
}

func sortByID(items []*projection.Projection[*domain.Pet]) {
	sort.Slice(items, func(i, j int) bool { return items[i].Entity.ID < items[j].Entity.ID })
}
