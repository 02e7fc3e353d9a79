package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"lofty-chat/internal/domain"
)

const maxNotifications = 50

// Notifier publica avisos no bloqueantes para el usuario.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotificationFeed guarda los últimos avisos hasta que la interfaz los consume.
type NotificationFeed struct {
	mu     sync.Mutex
	items  []domain.Notification
	listen func(domain.Notification)
}

func NewNotificationFeed() *NotificationFeed {
	return &NotificationFeed{}
}

// OnNotify registra un callback que se invoca en cada aviso (la CLI los imprime).
func (f *NotificationFeed) OnNotify(fn func(domain.Notification)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listen = fn
}

func (f *NotificationFeed) Notify(n domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	f.mu.Lock()
	f.items = append(f.items, n)
	if len(f.items) > maxNotifications {
		f.items = f.items[len(f.items)-maxNotifications:]
	}
	listen := f.listen
	f.mu.Unlock()

	if listen != nil {
		listen(n)
	}
}

// Drain devuelve los avisos pendientes y vacía el buffer.
func (f *NotificationFeed) Drain() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}
