package location

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"rady-client/internal/models"
)

// Source is the device-side provider of GPS fixes. Start begins delivery
// through the given publish callback; Stop halts it. Both are called at most
// once per On/Off cycle by the Stream.
type Source interface {
	Start(publish func(models.Position)) error
	Stop()
}

// Stream fans location updates out to subscribers. It is the process-wide
// location resource: one underlying Source, many listeners.
type Stream struct {
	source Source

	mu   sync.RWMutex
	on   bool
	last *models.Position
	subs map[string]func(models.Position)
	once []func(models.Position)
}

// Subscription is the handle returned by Subscribe. Cancel detaches the
// callback and is safe to call more than once.
type Subscription struct {
	token  string
	stream *Stream
	done   sync.Once
}

// Cancel removes the subscription from the stream
func (s *Subscription) Cancel() {
	s.done.Do(func() {
		s.stream.mu.Lock()
		delete(s.stream.subs, s.token)
		s.stream.mu.Unlock()
	})
}

// NewStream creates a stream over the given source
func NewStream(source Source) *Stream {
	return &Stream{
		source: source,
		subs:   make(map[string]func(models.Position)),
	}
}

// On starts the underlying source. Calling it while already on is a no-op.
func (s *Stream) On() error {
	s.mu.Lock()
	if s.on {
		s.mu.Unlock()
		return nil
	}
	s.on = true
	s.mu.Unlock()

	log.Printf("📍 Location stream turning on")
	if err := s.source.Start(s.Publish); err != nil {
		s.mu.Lock()
		s.on = false
		s.mu.Unlock()
		return err
	}
	return nil
}

// Off stops the underlying source. Calling it while already off is a no-op.
func (s *Stream) Off() {
	s.mu.Lock()
	if !s.on {
		s.mu.Unlock()
		return
	}
	s.on = false
	s.mu.Unlock()

	log.Printf("📍 Location stream turning off")
	s.source.Stop()
}

// Subscribe registers a callback for every update and returns its handle
func (s *Stream) Subscribe(fn func(models.Position)) *Subscription {
	sub := &Subscription{token: uuid.NewString(), stream: s}
	s.mu.Lock()
	s.subs[sub.token] = fn
	s.mu.Unlock()
	return sub
}

// Once registers a callback for the next update only
func (s *Stream) Once(fn func(models.Position)) {
	s.mu.Lock()
	s.once = append(s.once, fn)
	s.mu.Unlock()
}

// Last returns the most recent position, if any was delivered yet
func (s *Stream) Last() (models.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return models.Position{}, false
	}
	return *s.last, true
}

// Publish delivers a position to all current subscribers synchronously.
// Callbacks must not block; they run on the delivering goroutine.
func (s *Stream) Publish(p models.Position) {
	s.mu.Lock()
	s.last = &p
	pending := make([]func(models.Position), 0, len(s.once)+len(s.subs))
	pending = append(pending, s.once...)
	s.once = nil
	for _, fn := range s.subs {
		pending = append(pending, fn)
	}
	s.mu.Unlock()

	// Deliver outside the lock so callbacks may subscribe or cancel
	for _, fn := range pending {
		fn(p)
	}
}
