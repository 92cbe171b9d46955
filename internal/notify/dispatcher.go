package notify

import (
	"log"
	"sync"

	"rady-client/internal/models"
)

// Handler consumes a single push notification
type Handler func(models.Notification)

// Dispatcher routes push notifications to the handler registered for their
// kind, falling back to a default handler for unknown kinds. Deliveries are
// FIFO: a Notify issued from inside a handler is queued and handled after the
// current one, never nested.
type Dispatcher struct {
	mu             sync.Mutex
	handlers       map[models.EventKind]Handler
	defaultHandler Handler
	queue          []models.Notification
	handling       bool
}

// NewDispatcher creates a dispatcher whose default handler logs the payload
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[models.EventKind]Handler),
		defaultHandler: func(n models.Notification) {
			log.Printf("⚠️  Unhandled notification (type=%q title=%q)", n.AdditionalData.Type, n.Title)
		},
	}
}

// AddHandler registers the handler for an event kind, replacing any previous one
func (d *Dispatcher) AddHandler(kind models.EventKind, h Handler) {
	d.mu.Lock()
	d.handlers[kind] = h
	d.mu.Unlock()
}

// SetDefaultHandler replaces the fallback handler for unregistered kinds
func (d *Dispatcher) SetDefaultHandler(h Handler) {
	d.mu.Lock()
	d.defaultHandler = h
	d.mu.Unlock()
}

// Notify enqueues a notification and drains the queue unless a drain is
// already in progress on another frame of this goroutine or another goroutine.
func (d *Dispatcher) Notify(n models.Notification) {
	d.mu.Lock()
	d.queue = append(d.queue, n)
	if d.handling {
		d.mu.Unlock()
		return
	}
	d.handling = true

	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]

		handler := d.handlers[next.Kind()]
		if handler == nil {
			handler = d.defaultHandler
		}

		// Handlers run outside the lock so they may register handlers
		// or notify again
		d.mu.Unlock()
		handler(next)
		d.mu.Lock()
	}

	d.handling = false
	d.mu.Unlock()
}
