// Package notify is the fire-and-forget notification sink shared by the
// services and the workers. Notifications land in a short-lived in-memory
// feed polled by the terminals and are mirrored to the log.
package notify

import (
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// Notifier never fails and never blocks the caller.
type Notifier interface {
	Notify(kind Kind, msg string)
}

type Notification struct {
	ID        string    `json:"id"`
	Type      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed keeps each notification for ttl, then drops it.
type Feed struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration
}

func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Feed{ttl: ttl}
}

func (f *Feed) Notify(kind Kind, msg string) {
	n := Notification{ID: cuid.New(), Type: kind, Message: msg, CreatedAt: time.Now()}

	f.mu.Lock()
	f.items = append(f.items, n)
	f.mu.Unlock()

	ev := log.Info()
	switch kind {
	case Warning:
		ev = log.Warn()
	case Error:
		ev = log.Error()
	}
	ev.Str("notification_id", n.ID).Str("kind", string(kind)).Msg(msg)

	time.AfterFunc(f.ttl, func() { f.Dismiss(n.ID) })
}

// List returns the live notifications, oldest first.
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.items...)
}

// Dismiss removes a notification; unknown ids are ignored.
func (f *Feed) Dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

// Discard drops every notification. Handy in tests and CLI tools.
type Discard struct{}

func (Discard) Notify(Kind, string) {}
