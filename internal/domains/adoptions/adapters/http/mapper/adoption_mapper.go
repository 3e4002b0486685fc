package mapper

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

// AdoptRequest is the submission payload for POST /pets/{petId}/adopt.
type AdoptRequest struct {
	Message string `json:"message"`
}

// DecisionRequest is the administrator decision payload.
type DecisionRequest struct {
	Status string `json:"status" binding:"required"`
}

// PetSummary is the pet projection shown next to an application.
type PetSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name,omitempty"`
	Species string `json:"species,omitempty"`
	Breed   string `json:"breed,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Applicant is the user projection shown next to an application.
type Applicant struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Application is the HTTP representation of an adoption application.
type Application struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	PetID     int64       `json:"petId"`
	Message   string      `json:"message,omitempty"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
	Pet       *PetSummary `json:"pet,omitempty"`
	User      *Applicant  `json:"user,omitempty"`
}

// Decision is the response to a decision: the application plus its side effects.
type Decision struct {
	Application
	PetStatus    string  `json:"petStatus"`
	AutoRejected []int64 `json:"autoRejectedIds"`
}

// Deletion confirms a removed application.
type Deletion struct {
	Message   string `json:"message"`
	PetStatus string `json:"petStatus,omitempty"`
}

// Message is an inbox entry.
type Message struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"applicationId,omitempty"`
	PetID         int64     `json:"petId,omitempty"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromProjection maps a persisted application without joined projections.
func FromProjection(p *ports.ApplicationProjection) Application {
	if p == nil || p.Entity == nil {
		return Application{}
	}
	return Application{
		ID:        p.Entity.ID,
		UserID:    p.Entity.UserID,
		PetID:     p.Entity.PetID,
		Message:   p.Entity.Message,
		Status:    string(p.Entity.Status),
		CreatedAt: p.Metadata.CreatedAt,
		UpdatedAt: p.Metadata.UpdatedAt,
	}
}

// FromView maps an application joined with its pet and applicant.
func FromView(v *ports.ApplicationView) Application {
	if v == nil {
		return Application{}
	}
	out := FromProjection(v.Application)
	out.Pet = &PetSummary{
		ID:      v.Pet.ID,
		Name:    v.Pet.Name,
		Species: v.Pet.Species,
		Breed:   v.Pet.Breed,
		Status:  string(v.Pet.Status),
	}
	out.User = &Applicant{ID: v.Applicant.ID, Name: v.Applicant.Name, Email: v.Applicant.Email}
	return out
}

// FromViewList maps a listing.
func FromViewList(items []*ports.ApplicationView) []Application {
	result := make([]Application, 0, len(items))
	for _, item := range items {
		if item == nil || item.Application == nil {
			continue
		}
		result = append(result, FromView(item))
	}
	return result
}

// FromDecision maps a decision outcome.
func FromDecision(o *ports.DecisionOutcome) Decision {
	if o == nil {
		return Decision{AutoRejected: []int64{}}
	}
	out := Decision{
		Application:  FromProjection(o.Application),
		PetStatus:    string(o.Pet.Status),
		AutoRejected: make([]int64, 0, len(o.AutoRejected)),
	}
	out.Application.Pet = &PetSummary{
		ID:      o.Pet.ID,
		Name:    o.Pet.Name,
		Species: o.Pet.Species,
		Breed:   o.Pet.Breed,
		Status:  string(o.Pet.Status),
	}
	for _, rejected := range o.AutoRejected {
		out.AutoRejected = append(out.AutoRejected, rejected.ApplicationID)
	}
	return out
}

// FromDeletion maps a deletion outcome.
func FromDeletion(o *ports.DeletionOutcome) Deletion {
	if o == nil {
		return Deletion{Message: "application deleted"}
	}
	return Deletion{Message: "application deleted", PetStatus: string(o.PetStatus)}
}

// FromMessages maps inbox entries.
func FromMessages(items []ports.Message) []Message {
	result := make([]Message, 0, len(items))
	for _, item := range items {
		result = append(result, Message{
			ID:            item.ID,
			ApplicationID: item.ApplicationID,
			PetID:         item.PetID,
			Subject:       item.Subject,
			Body:          item.Body,
			CreatedAt:     item.CreatedAt,
		})
	}
	return result
}
