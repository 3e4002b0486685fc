package domain

import (
	"errors"
	"strings"
)

// Status represents the adoptability state of a pet.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
)

// Pet represents the aggregate managed by the pets bounded context.
type Pet struct {
	ID          int64
	Name        string
	Species     string
	Breed       string
	Age         *int
	Gender      string
	Description string
	// Image holds either a URL or an inline data URI.
	Image  string
	Status Status
}

var (
	ErrEmptyName     = errors.New("pet name is required")
	ErrEmptySpecies  = errors.New("pet species is required")
	ErrInvalidAge    = errors.New("pet age must be greater or equal to zero")
	ErrInvalidStatus = errors.New("pet status must be one of available, pending, adopted")
)

// NewPet validates the invariants and builds a new available Pet aggregate.
func NewPet(id int64, name, species string) (*Pet, error) {
	p := &Pet{ID: id, Status: StatusAvailable}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.ChangeSpecies(species); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Valid reports whether the status is part of the known vocabulary.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusAdopted:
		return true
	}
	return false
}

// Adoptable reports whether new applications may be filed against a pet in this state.
func (s Status) Adoptable() bool {
	return s == StatusAvailable || s == StatusPending
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// ChangeSpecies sets the species, which is mandatory.
func (p *Pet) ChangeSpecies(species string) error {
	species = strings.TrimSpace(species)
	if species == "" {
		return ErrEmptySpecies
	}
	p.Species = species
	return nil
}

// UpdateAge stores the age in years; nil clears it.
func (p *Pet) UpdateAge(age *int) error {
	if age == nil {
		p.Age = nil
		return nil
	}
	if *age < 0 {
		return ErrInvalidAge
	}
	v := *age
	p.Age = &v
	return nil
}

// UpdateStatus is the administrative direct edit of the adoptability state.
func (p *Pet) UpdateStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	p.Status = status
	return nil
}

// Clone returns a deep copy of the aggregate.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	copy := *p
	if p.Age != nil {
		age := *p.Age
		copy.Age = &age
	}
	return &copy
}
