package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var (
	_ ports.Notifier = (*MessageBox)(nil)
	_ ports.Inbox    = (*MessageBox)(nil)
)

// MessageBox stores delivered messages in memory.
type MessageBox struct {
	mu       sync.RWMutex
	messages []ports.Message
	nextID   int64
	now      func() time.Time
}

// NewMessageBox constructs an empty inbox.
func NewMessageBox() *MessageBox {
	return &MessageBox{now: time.Now}
}

// Notify appends every message, assigning identifiers and timestamps.
func (b *MessageBox) Notify(_ context.Context, messages []ports.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts := b.now()
	for _, msg := range messages {
		b.nextID++
		msg.ID = b.nextID
		msg.CreatedAt = ts
		b.messages = append(b.messages, msg)
	}
	return nil
}

// ListForUser returns the user's messages, newest first.
func (b *MessageBox) ListForUser(_ context.Context, userID int64) ([]ports.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var result []ports.Message
	for _, msg := range b.messages {
		if msg.UserID == userID {
			result = append(result, msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}
