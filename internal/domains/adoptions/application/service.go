package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// Service is the adoption lifecycle manager. Every mutation runs inside a
// single Store unit of work that locks the pet before touching its applications.
type Service struct {
	store    ports.Store
	notifier ports.Notifier
	inbox    ports.Inbox
}

// NewService wires the lifecycle manager. notifier and inbox may be nil.
func NewService(store ports.Store, notifier ports.Notifier, inbox ports.Inbox) *Service {
	return &Service{store: store, notifier: notifier, inbox: inbox}
}

// Submit files a pending application and marks the pet pending.
func (s *Service) Submit(ctx context.Context, input ports.SubmitInput) (*ports.ApplicationProjection, error) {
	app, err := domain.NewApplication(input.UserID, input.PetID, input.Message)
	if err != nil {
		return nil, mapError(err)
	}
	key := submitKey(input)
	var hash string
	if key != "" {
		if hash, err = FingerprintSubmit(input); err != nil {
			return nil, err
		}
	}
	var saved *ports.ApplicationProjection
	err = s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if key != "" {
			var recorded ports.ApplicationProjection
			found, err := replay(ctx, tx, key, hash, &recorded)
			if err != nil {
				return err
			}
			if found {
				saved = &recorded
				return nil
			}
		}
		pet, err := tx.LockPet(ctx, app.PetID)
		if err != nil {
			return err
		}
		if err := domain.CheckAdoptable(pet.Status); err != nil {
			return err
		}
		exists, err := tx.HasApplication(ctx, app.UserID, app.PetID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateApplication
		}
		saved, err = tx.InsertApplication(ctx, app)
		if err != nil {
			return err
		}
		if pet.Status != petdomain.StatusPending {
			if err := tx.SetPetStatus(ctx, pet.ID, petdomain.StatusPending); err != nil {
				return err
			}
		}
		if key != "" {
			return remember(ctx, tx, key, hash, saved)
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Decide approves or rejects a pending application. Approval adopts the pet
// and rejects every other pending application for it; rejection recomputes
// the pet status from the applications still pending.
func (s *Service) Decide(ctx context.Context, input ports.DecideInput) (*ports.DecisionOutcome, error) {
	if input.ApplicationID <= 0 {
		return nil, mapError(domain.ErrInvalidApplicationID)
	}
	decision, err := domain.ParseDecision(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	key := decideKey(input)
	var hash string
	if key != "" {
		if hash, err = FingerprintDecide(input); err != nil {
			return nil, err
		}
	}
	outcome := &ports.DecisionOutcome{}
	err = s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if key != "" {
			found, err := replay(ctx, tx, key, hash, outcome)
			if err != nil || found {
				outcome.Replayed = found
				return err
			}
		}
		current, pet, err := loadLocked(ctx, tx, input.ApplicationID)
		if err != nil {
			return err
		}
		if decision == domain.StatusApproved {
			if err := domain.CheckApprovable(pet.Status); err != nil {
				return err
			}
		}
		app := current.Entity
		if err := app.Decide(decision); err != nil {
			return err
		}
		updated, err := tx.UpdateApplicationStatus(ctx, app.ID, app.Status)
		if err != nil {
			return err
		}
		outcome.Application = updated

		next := pet.Status
		if decision == domain.StatusApproved {
			next = petdomain.StatusAdopted
			rejected, err := tx.RejectPendingSiblings(ctx, pet.ID, app.ID)
			if err != nil {
				return err
			}
			outcome.AutoRejected = rejected
		} else {
			pending, err := tx.CountPending(ctx, pet.ID)
			if err != nil {
				return err
			}
			next = domain.StatusAfterRejection(pet.Status, pending)
		}
		if next != pet.Status {
			if err := tx.SetPetStatus(ctx, pet.ID, next); err != nil {
				return err
			}
			pet.Status = next
		}
		outcome.Pet = *pet
		if key != "" {
			return remember(ctx, tx, key, hash, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return outcome, nil
}

// Delete removes an application owned by the caller (or any application for
// admins) and recomputes the pet status.
func (s *Service) Delete(ctx context.Context, input ports.DeleteInput) (*ports.DeletionOutcome, error) {
	if input.ApplicationID <= 0 {
		return nil, mapError(domain.ErrInvalidApplicationID)
	}
	var outcome *ports.DeletionOutcome
	err := s.store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		first, err := tx.GetApplication(ctx, input.ApplicationID)
		if err != nil {
			return err
		}
		if !first.Entity.RemovableBy(input.Caller.UserID, input.Caller.Admin) {
			return domain.ErrNotOwner
		}
		pet, err := tx.LockPet(ctx, first.Entity.PetID)
		if err != nil && !errors.Is(err, ports.ErrPetNotFound) {
			return err
		}
		// A decision may have committed while we waited for the pet lock.
		current, err := tx.GetApplication(ctx, input.ApplicationID)
		if err != nil {
			return err
		}
		app := current.Entity
		if err := tx.DeleteApplication(ctx, app.ID); err != nil {
			return err
		}
		outcome = &ports.DeletionOutcome{ApplicationID: app.ID, PetID: app.PetID}
		if pet == nil {
			return nil
		}
		pending, err := tx.CountPending(ctx, pet.ID)
		if err != nil {
			return err
		}
		next := domain.StatusAfterRemoval(pet.Status, pending, app.Status)
		if next != pet.Status {
			if err := tx.SetPetStatus(ctx, pet.ID, next); err != nil {
				return err
			}
		}
		outcome.PetStatus = next
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return outcome, nil
}

// List returns applications joined with pet and applicant projections, newest first.
func (s *Service) List(ctx context.Context, input ports.ListInput) ([]*ports.ApplicationView, error) {
	filter := ports.ListFilter{UserID: input.UserID, PetID: input.PetID}
	for _, raw := range input.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	views, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return views, nil
}

// ListForUser lists the applications filed by userID.
func (s *Service) ListForUser(ctx context.Context, caller ports.Caller, userID int64) ([]*ports.ApplicationView, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUserID)
	}
	if !caller.Admin && caller.UserID != userID {
		return nil, fmt.Errorf("%w: cannot list applications of another user", ErrForbidden)
	}
	return s.List(ctx, ports.ListInput{UserID: userID})
}

// NotifyDecision delivers the decision to the applicant and every auto-rejected sibling.
func (s *Service) NotifyDecision(ctx context.Context, outcome ports.DecisionOutcome) error {
	if s.notifier == nil || outcome.Application == nil || outcome.Application.Entity == nil {
		return nil
	}
	return s.notifier.Notify(ctx, decisionMessages(outcome))
}

// Inbox lists the messages delivered to userID.
func (s *Service) Inbox(ctx context.Context, userID int64) ([]ports.Message, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUserID)
	}
	if s.inbox == nil {
		return nil, nil
	}
	messages, err := s.inbox.ListForUser(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return messages, nil
}

// loadLocked resolves the application's pet, locks it, and re-reads the
// application so its status is current under the lock.
func loadLocked(ctx context.Context, tx ports.Tx, applicationID int64) (*ports.ApplicationProjection, *ports.PetSnapshot, error) {
	first, err := tx.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	pet, err := tx.LockPet(ctx, first.Entity.PetID)
	if err != nil {
		return nil, nil, err
	}
	current, err := tx.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	return current, pet, nil
}

func decisionMessages(outcome ports.DecisionOutcome) []ports.Message {
	app := outcome.Application.Entity
	petName := outcome.Pet.Name
	if petName == "" {
		petName = fmt.Sprintf("pet #%d", app.PetID)
	}
	messages := make([]ports.Message, 0, 1+len(outcome.AutoRejected))
	decided := ports.Message{UserID: app.UserID, ApplicationID: app.ID, PetID: app.PetID}
	if app.Status == domain.StatusApproved {
		decided.Subject = fmt.Sprintf("Your application for %s was approved", petName)
		decided.Body = fmt.Sprintf("Congratulations! Your adoption application for %s has been approved. We will contact you to arrange the handover.", petName)
	} else {
		decided.Subject = fmt.Sprintf("Your application for %s was rejected", petName)
		decided.Body = fmt.Sprintf("We are sorry, your adoption application for %s has been rejected.", petName)
	}
	messages = append(messages, decided)
	for _, sibling := range outcome.AutoRejected {
		messages = append(messages, ports.Message{
			UserID:        sibling.UserID,
			ApplicationID: sibling.ApplicationID,
			PetID:         app.PetID,
			Subject:       fmt.Sprintf("Your application for %s was rejected", petName),
			Body:          fmt.Sprintf("%s has been adopted by another applicant, so your application was closed.", petName),
		})
	}
	return messages
}

var _ ports.Service = (*Service)(nil)
