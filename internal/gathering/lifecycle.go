package gathering

import (
	"context"
	"fmt"
	"log"

	"rady-client/internal/models"
	"rady-client/internal/rest"
)

// begin claims the single-flight gate for a mutating operation. Only one
// mutating network operation may be outstanding at a time; overlapping calls
// are rejected rather than queued so a stale intent can never fire after a
// newer one.
func (c *Coordinator) begin(op string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.inFlight != "" {
		return fmt.Errorf("%s while %s is in flight: %w", op, c.inFlight, ErrOperationInFlight)
	}
	c.inFlight = op
	return nil
}

func (c *Coordinator) end() {
	c.opMu.Lock()
	c.inFlight = ""
	c.opMu.Unlock()
}

// Create posts the locally assembled gathering to the server. It requires the
// create sub-state with a resolved destination and at least one participant.
// On success the record is replaced by the server-assigned one; the local
// status stays at create until the caller transitions to pending. On failure
// local state is untouched so the caller can retry or abort.
func (c *Coordinator) Create(ctx context.Context) error {
	if err := c.begin("create"); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	if c.status != models.StatusCreate {
		status := c.status
		c.mu.RUnlock()
		return fmt.Errorf("create while status is %q: %w", status, ErrPrecondition)
	}
	if c.record == nil || c.record.Place == nil {
		c.mu.RUnlock()
		return fmt.Errorf("create without destination: %w", ErrPrecondition)
	}
	if len(c.record.Participants) == 0 {
		c.mu.RUnlock()
		return fmt.Errorf("create without participants: %w", ErrPrecondition)
	}
	req := rest.CreateMeetingRequest{
		Type:  models.MeetingTypePlace,
		Place: &models.Place{Latitude: c.record.Place.Latitude, Longitude: c.record.Place.Longitude, Name: c.record.Place.Name},
	}
	for _, p := range c.record.Participants {
		req.Participants = append(req.Participants, p.User.ID)
	}
	c.mu.RUnlock()

	log.Printf("📤 Creating meeting at (%.6f, %.6f) with %d participants",
		req.Place.Latitude, req.Place.Longitude, len(req.Participants))
	created, err := c.transport.CreateMeeting(ctx, req)
	if err != nil {
		log.Printf("❌ Create failed: %v", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != models.StatusCreate {
		// Reset raced the round trip; the created meeting is orphaned but
		// local state must stay consistent with the reset
		log.Printf("⚠️  Create resolved after reset, discarding record %d", created.ID)
		return nil
	}
	c.record = copyGathering(created)
	return nil
}

// Accept marks the local user's participation as accepted. Allowed while the
// gathering is pending or still an unanswered request; an accepted request
// advances to pending.
func (c *Coordinator) Accept(ctx context.Context) error {
	if err := c.begin("accept"); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	status := c.status
	id := c.recordID()
	c.mu.RUnlock()
	if status != models.StatusPending && status != models.StatusRequest {
		return fmt.Errorf("accept while status is %q: %w", status, ErrPrecondition)
	}
	if id == 0 {
		return fmt.Errorf("accept: %w", ErrNoGathering)
	}

	accepted := true
	if err := c.transport.UpdateParticipant(ctx, id, rest.ParticipantPatch{Accepted: &accepted}); err != nil {
		log.Printf("❌ Accept failed for meeting %d: %v", id, err)
		return err
	}

	c.mu.Lock()
	c.markSelf(func(p *models.Participant) { p.Accepted = &accepted })
	if c.status == models.StatusRequest {
		c.status = models.StatusPending
	}
	c.mu.Unlock()
	log.Printf("✅ Accepted meeting %d", id)
	return nil
}

// Decline marks the local user's participation as refused
func (c *Coordinator) Decline(ctx context.Context) error {
	if err := c.begin("decline"); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	id := c.recordID()
	c.mu.RUnlock()
	if id == 0 {
		return fmt.Errorf("decline: %w", ErrNoGathering)
	}

	declined := false
	if err := c.transport.UpdateParticipant(ctx, id, rest.ParticipantPatch{Accepted: &declined}); err != nil {
		log.Printf("❌ Decline failed for meeting %d: %v", id, err)
		return err
	}

	c.mu.Lock()
	c.markSelf(func(p *models.Participant) { p.Accepted = &declined })
	c.mu.Unlock()
	log.Printf("✅ Declined meeting %d", id)
	return nil
}

// Arrived signals that the local user reached the destination. Only valid
// while the gathering is running.
func (c *Coordinator) Arrived(ctx context.Context) error {
	if err := c.begin("arrived"); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	status := c.status
	id := c.recordID()
	c.mu.RUnlock()
	if status != models.StatusRunning {
		return fmt.Errorf("arrived while status is %q: %w", status, ErrPrecondition)
	}
	if id == 0 {
		return fmt.Errorf("arrived: %w", ErrNoGathering)
	}

	arrived := true
	if err := c.transport.UpdateParticipant(ctx, id, rest.ParticipantPatch{Arrived: &arrived}); err != nil {
		log.Printf("❌ Arrived failed for meeting %d: %v", id, err)
		return err
	}

	c.mu.Lock()
	c.markSelf(func(p *models.Participant) { p.Arrived = true })
	c.mu.Unlock()
	log.Printf("✅ Arrived at meeting %d", id)
	return nil
}

// Stop sets the meeting's server-side status. Initiator only.
func (c *Coordinator) Stop(ctx context.Context, status models.RemoteStatus) error {
	if err := c.begin("stop"); err != nil {
		return err
	}
	defer c.end()

	c.mu.RLock()
	role := c.role
	id := c.recordID()
	c.mu.RUnlock()
	if role != models.RoleInitiator {
		return fmt.Errorf("stop: %w", ErrNotInitiator)
	}
	if id == 0 {
		return fmt.Errorf("stop: %w", ErrNoGathering)
	}

	if err := c.transport.UpdateMeetingStatus(ctx, id, status); err != nil {
		log.Printf("❌ Stop failed for meeting %d: %v", id, err)
		return err
	}

	c.mu.Lock()
	if c.record != nil {
		c.record.Status = status
	}
	c.mu.Unlock()
	log.Printf("✅ Stopped meeting %d (%s)", id, status)
	return nil
}

// Fetch retrieves the authoritative record by id. When a gathering is active
// the local record is replaced wholesale; on failure it is left as held.
func (c *Coordinator) Fetch(ctx context.Context, id int) (*models.Gathering, error) {
	fetched, err := c.transport.GetMeeting(ctx, id)
	if err != nil {
		log.Printf("❌ Fetch failed for meeting %d: %v", id, err)
		return nil, err
	}

	c.mu.Lock()
	if c.status != models.StatusNone && c.status != "" {
		c.record = copyGathering(fetched)
	}
	c.mu.Unlock()
	return fetched, nil
}

// recordID must be called with c.mu held
func (c *Coordinator) recordID() int {
	if c.record == nil {
		return 0
	}
	return c.record.ID
}

// markSelf mutates the local user's participant entry. Must be called with
// c.mu held. A missing entry is logged and ignored: server and client can
// legitimately race.
func (c *Coordinator) markSelf(mutate func(*models.Participant)) {
	if c.record == nil {
		return
	}
	p := c.record.Participant(c.selfID)
	if p == nil {
		log.Printf("⚠️  Own participant entry (user %d) not in meeting %d", c.selfID, c.record.ID)
		return
	}
	mutate(p)
}
