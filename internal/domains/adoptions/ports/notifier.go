package ports

import (
	"context"
	"time"
)

// Message is an inbox entry delivered to an applicant.
type Message struct {
	ID            int64
	UserID        int64
	ApplicationID int64
	PetID         int64
	Subject       string
	Body          string
	CreatedAt     time.Time
}

// Notifier delivers messages to applicants.
type Notifier interface {
	Notify(ctx context.Context, messages []Message) error
}

// Inbox reads the messages delivered to a user, newest first.
type Inbox interface {
	ListForUser(ctx context.Context, userID int64) ([]Message, error)
}
