package domain

import petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"

// CheckAdoptable guards new submissions: only available or pending pets accept applications.
func CheckAdoptable(current petdomain.Status) error {
	if !current.Adoptable() {
		return ErrPetNotAdoptable
	}
	return nil
}

// CheckApprovable guards approvals so a pet never holds two approved applications.
func CheckApprovable(current petdomain.Status) error {
	if current == petdomain.StatusAdopted {
		return ErrPetAlreadyAdopted
	}
	return nil
}

// StatusAfterRejection recomputes the pet status once an application leaves
// pending without approval. A pet that is already adopted stays adopted.
func StatusAfterRejection(current petdomain.Status, pendingLeft int) petdomain.Status {
	if current == petdomain.StatusAdopted {
		return current
	}
	if pendingLeft > 0 {
		return petdomain.StatusPending
	}
	return petdomain.StatusAvailable
}

// StatusAfterRemoval recomputes the pet status after an application is deleted.
// Removing the approved application withdraws the adoption.
func StatusAfterRemoval(current petdomain.Status, pendingLeft int, removed Status) petdomain.Status {
	if removed == StatusApproved {
		current = petdomain.StatusAvailable
	}
	return StatusAfterRejection(current, pendingLeft)
}

// DeriveStatus computes the pet status from the full application set:
// adopted if any is approved, pending if any is pending, available otherwise.
func DeriveStatus(statuses []Status) petdomain.Status {
	pending := false
	for _, status := range statuses {
		switch status {
		case StatusApproved:
			return petdomain.StatusAdopted
		case StatusPending:
			pending = true
		}
	}
	if pending {
		return petdomain.StatusPending
	}
	return petdomain.StatusAvailable
}
