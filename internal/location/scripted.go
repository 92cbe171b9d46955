package location

import (
	"sync"
	"time"

	"rady-client/internal/models"
)

// ScriptedSource replays a fixed series of positions at a fixed interval.
// Used by the simulator binary and tests in place of a real GPS.
type ScriptedSource struct {
	positions []models.Position
	interval  time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewScriptedSource creates a source that replays the given positions
func NewScriptedSource(positions []models.Position, interval time.Duration) *ScriptedSource {
	return &ScriptedSource{positions: positions, interval: interval}
}

// Start begins replaying positions on a background goroutine
func (s *ScriptedSource) Start(publish func(models.Position)) error {
	if len(s.positions) == 0 {
		return nil
	}
	interval := s.interval
	if interval <= 0 {
		interval = time.Second
	}

	s.mu.Lock()
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for _, p := range s.positions {
			select {
			case <-stop:
				return
			case <-ticker.C:
				publish(p)
			}
		}
	}()
	return nil
}

// Stop halts the replay
func (s *ScriptedSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
