package gathering

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rady-client/internal/geo"
	"rady-client/internal/location"
	"rady-client/internal/models"
	"rady-client/internal/rest"
)

// Coordinator is the single source of truth for the active gathering. All
// mutations go through its operations; UI callers only read.
type Coordinator struct {
	transport Transport
	stream    *location.Stream
	selfID    int

	navigator Navigator
	prompter  Prompter

	mu       sync.RWMutex
	status   models.Status
	role     models.Role
	record   *models.Gathering
	distance *int
	sub      *location.Subscription

	opMu     sync.Mutex
	inFlight string // Name of the mutating operation currently awaiting the server
}

// New creates a coordinator for the local user identified by selfID
func New(transport Transport, stream *location.Stream, selfID int) *Coordinator {
	return &Coordinator{
		transport: transport,
		stream:    stream,
		selfID:    selfID,
		status:    models.StatusNone,
		role:      models.RoleUnknown,
	}
}

// Status returns the local lifecycle status
func (c *Coordinator) Status() models.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Role returns the local user's role for the active gathering
func (c *Coordinator) Role() models.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// Initiator reports whether the local user created the active gathering
func (c *Coordinator) Initiator() bool {
	return c.Role() == models.RoleInitiator
}

// Record returns a copy of the active gathering record, or nil
func (c *Coordinator) Record() *models.Gathering {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyGathering(c.record)
}

// Distance returns the last computed distance to the destination in meters.
// ok is false while no gathering with a resolved destination is active or no
// position has been delivered yet.
func (c *Coordinator) Distance() (meters int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.distance == nil {
		return 0, false
	}
	return *c.distance, true
}

// Set installs a new active gathering. status must be one of StatusCreate,
// StatusRequest or StatusPending. The role is fixed here for the lifetime of
// the gathering: initiator when installing a create flow, participant
// otherwise. Fails with ErrGatheringActive when one is already installed;
// the expected caller protocol is reset before set.
func (c *Coordinator) Set(g *models.Gathering, status models.Status) error {
	if g == nil {
		return fmt.Errorf("set: nil gathering")
	}
	switch status {
	case models.StatusCreate, models.StatusRequest, models.StatusPending:
	default:
		return fmt.Errorf("set with status %q: %w", status, ErrPrecondition)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != models.StatusNone && c.status != "" {
		return fmt.Errorf("set while status is %q: %w", c.status, ErrGatheringActive)
	}

	c.record = copyGathering(g)
	c.status = status
	if status == models.StatusCreate {
		c.role = models.RoleInitiator
	} else {
		c.role = models.RoleParticipant
	}
	c.distance = nil
	c.sub = c.stream.Subscribe(c.onPosition)

	log.Printf("✅ Gathering installed (status=%s role=%s)", c.status, c.role)
	return nil
}

// Reset terminates any active gathering and clears local state back to none.
// When notifyServer is true and the gathering got past the create sub-state,
// a best-effort server-side termination is performed first: the initiator
// stops the meeting with terminal, anyone else declines their participation.
// Calling Reset with no active gathering is a safe no-op.
func (c *Coordinator) Reset(ctx context.Context, notifyServer bool, terminal models.RemoteStatus) {
	c.mu.Lock()
	if c.status == models.StatusNone || c.status == "" {
		c.mu.Unlock()
		return
	}
	status := c.status
	role := c.role
	record := c.record
	sub := c.sub

	c.status = models.StatusNone
	c.role = models.RoleUnknown
	c.record = nil
	c.distance = nil
	c.sub = nil
	c.mu.Unlock()

	// Owed network cleanup, best effort. A create-stage gathering was never
	// posted, so there is nothing to terminate remotely.
	if notifyServer && status != models.StatusCreate && record != nil && record.ID != 0 {
		if role == models.RoleInitiator {
			if err := c.transport.UpdateMeetingStatus(ctx, record.ID, terminal); err != nil {
				log.Printf("⚠️  Reset: stop meeting %d failed: %v", record.ID, err)
			}
		} else {
			declined := false
			patch := rest.ParticipantPatch{Accepted: &declined}
			if err := c.transport.UpdateParticipant(ctx, record.ID, patch); err != nil {
				log.Printf("⚠️  Reset: decline meeting %d failed: %v", record.ID, err)
			}
		}
	}

	if sub != nil {
		sub.Cancel()
	}
	c.stream.Off()
	log.Printf("✅ Gathering reset (was %s)", status)
}

// Transition advances the local status through the legal client-side edges:
// create to pending (after a successful create), request to pending (after
// the invitee accepted), pending to running (when the meeting progresses).
// Anything else is rejected with ErrBadTransition.
func (c *Coordinator) Transition(to models.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	legal := false
	switch {
	case c.status == models.StatusCreate && to == models.StatusPending:
		legal = c.record != nil && c.record.ID != 0
	case c.status == models.StatusRequest && to == models.StatusPending:
		legal = true
	case c.status == models.StatusPending && to == models.StatusRunning:
		legal = true
	}
	if !legal {
		return fmt.Errorf("transition %q -> %q: %w", c.status, to, ErrBadTransition)
	}

	log.Printf("🔄 Gathering status %s -> %s", c.status, to)
	c.status = to
	return nil
}

// onPosition recomputes the distance to the destination on every location
// update. It must never block: subscribers run synchronously on the stream's
// delivering goroutine.
func (c *Coordinator) onPosition(p models.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		c.distance = nil
		return
	}
	lat, lon, ok := c.record.Destination()
	if !ok {
		c.distance = nil
		return
	}
	meters := geo.RoundMeters(geo.DistanceMeters(p.Latitude, p.Longitude, lat, lon))
	c.distance = &meters
}

// copyGathering returns a detached copy so callers cannot write through the
// coordinator's state
func copyGathering(g *models.Gathering) *models.Gathering {
	if g == nil {
		return nil
	}
	dup := *g
	if g.Place != nil {
		place := *g.Place
		dup.Place = &place
	}
	dup.Participants = make([]models.Participant, len(g.Participants))
	for i, p := range g.Participants {
		dup.Participants[i] = p
		if p.Accepted != nil {
			accepted := *p.Accepted
			dup.Participants[i].Accepted = &accepted
		}
	}
	return &dup
}
