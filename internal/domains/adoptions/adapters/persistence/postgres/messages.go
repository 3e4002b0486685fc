package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var (
	_ ports.Notifier = (*MessageBox)(nil)
	_ ports.Inbox    = (*MessageBox)(nil)
)

// MessageBox stores applicant notifications in the messages table.
type MessageBox struct {
	db *gorm.DB
}

// NewMessageBox wires the inbox. The caller owns the DB lifecycle.
func NewMessageBox(db *gorm.DB) *MessageBox {
	return &MessageBox{db: db}
}

type messageRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	UserID        int64     `gorm:"column:user_id"`
	ApplicationID *int64    `gorm:"column:application_id"`
	PetID         *int64    `gorm:"column:pet_id"`
	Subject       string    `gorm:"column:subject"`
	Body          string    `gorm:"column:body"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (messageRecord) TableName() string { return "messages" }

// Notify inserts every message in one statement.
func (b *MessageBox) Notify(ctx context.Context, messages []ports.Message) error {
	if b == nil || b.db == nil {
		return errors.New("postgres message box not configured")
	}
	if len(messages) == 0 {
		return nil
	}
	records := make([]messageRecord, 0, len(messages))
	for _, msg := range messages {
		records = append(records, messageRecord{
			UserID:        msg.UserID,
			ApplicationID: optionalID(msg.ApplicationID),
			PetID:         optionalID(msg.PetID),
			Subject:       msg.Subject,
			Body:          msg.Body,
		})
	}
	return b.db.WithContext(ctx).Create(&records).Error
}

// ListForUser returns the user's messages, newest first.
func (b *MessageBox) ListForUser(ctx context.Context, userID int64) ([]ports.Message, error) {
	if b == nil || b.db == nil {
		return nil, errors.New("postgres message box not configured")
	}
	var records []messageRecord
	if err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]ports.Message, 0, len(records))
	for _, record := range records {
		msg := ports.Message{
			ID:        record.ID,
			UserID:    record.UserID,
			Subject:   record.Subject,
			Body:      record.Body,
			CreatedAt: record.CreatedAt,
		}
		if record.ApplicationID != nil {
			msg.ApplicationID = *record.ApplicationID
		}
		if record.PetID != nil {
			msg.PetID = *record.PetID
		}
		result = append(result, msg)
	}
	return result, nil
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
