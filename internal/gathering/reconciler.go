package gathering

import (
	"context"
	"log"

	"rady-client/internal/models"
	"rady-client/internal/notify"
	"rady-client/internal/rest"
)

// Bind registers the coordinator's push-event handlers on the dispatcher and
// installs the caller-supplied navigation and prompting capabilities. Every
// handler tolerates arriving with no active gathering; only new-meeting can
// create local state from nothing.
func (c *Coordinator) Bind(d *notify.Dispatcher, navigator Navigator, prompter Prompter) {
	c.navigator = navigator
	c.prompter = prompter

	d.AddHandler(models.KindNewMeeting, c.onNewMeeting)
	d.AddHandler(models.KindUserAccepted, func(n models.Notification) {
		c.applyParticipantEvent(n, func(p *models.Participant) {
			accepted := true
			p.Accepted = &accepted
		})
	})
	d.AddHandler(models.KindUserRefused, func(n models.Notification) {
		c.applyParticipantEvent(n, func(p *models.Participant) {
			refused := false
			p.Accepted = &refused
		})
	})
	// A participant canceling is folded into the same local effect as a
	// refusal; the server keeps them distinct but the client state does not
	d.AddHandler(models.KindUserCanceled, func(n models.Notification) {
		c.applyParticipantEvent(n, func(p *models.Participant) {
			refused := false
			p.Accepted = &refused
		})
	})
	// Arrived is applied without checking the participant had accepted; the
	// server enforces that ordering
	d.AddHandler(models.KindUserArrived, func(n models.Notification) {
		c.applyParticipantEvent(n, func(p *models.Participant) {
			p.Arrived = true
		})
	})
	d.AddHandler(models.KindInProgress, c.onInProgress)
	d.AddHandler(models.KindFinishedMeeting, c.onTerminal)
	d.AddHandler(models.KindCanceledMeeting, c.onTerminal)
}

// onNewMeeting handles an invitation push. Decline is fire-and-forget against
// the pushed meeting id and never touches local state; view resets whatever
// was active, fetches the authoritative record and installs it as a request.
func (c *Coordinator) onNewMeeting(n models.Notification) {
	ctx := context.Background()
	meetingID := n.AdditionalData.Meeting

	if c.prompter == nil || !c.promptNewGathering(n) {
		declined := false
		if err := c.transport.UpdateParticipant(ctx, meetingID, rest.ParticipantPatch{Accepted: &declined}); err != nil {
			log.Printf("⚠️  Decline of pushed meeting %d failed: %v", meetingID, err)
		}
		return
	}

	c.Reset(ctx, true, models.RemoteEnded)

	fetched, err := c.transport.GetMeeting(ctx, meetingID)
	if err != nil {
		log.Printf("❌ Could not fetch pushed meeting %d: %v", meetingID, err)
		return
	}
	if err := c.Set(fetched, models.StatusRequest); err != nil {
		log.Printf("❌ Could not install pushed meeting %d: %v", meetingID, err)
		return
	}
	c.navigate(ScreenPending)
}

// onInProgress records the server-side progress status and, when the local
// gathering was pending, advances it to running and asks for the running view
func (c *Coordinator) onInProgress(n models.Notification) {
	c.mu.Lock()
	if c.record == nil {
		c.mu.Unlock()
		log.Printf("⚠️  meeting-in-progress with no active gathering, ignored")
		return
	}
	c.record.Status = models.RemoteProgress
	advance := c.status == models.StatusPending
	if advance {
		c.status = models.StatusRunning
	}
	c.mu.Unlock()

	if advance {
		log.Printf("🔄 Gathering status pending -> running")
		if err := c.stream.On(); err != nil {
			log.Printf("⚠️  Could not start location stream: %v", err)
		}
		c.navigate(ScreenRunning)
	}
}

// onTerminal handles finished-meeting and canceled-meeting: acknowledge the
// user, clear local state and go back to the main view. The server already
// holds the terminal status, so the reset owes it no further calls.
func (c *Coordinator) onTerminal(n models.Notification) {
	c.mu.RLock()
	active := c.status != models.StatusNone && c.status != ""
	c.mu.RUnlock()
	if !active {
		log.Printf("⚠️  %s with no active gathering, ignored", n.AdditionalData.Type)
		return
	}

	if c.prompter != nil {
		c.prompter.Acknowledge(n)
	}
	c.Reset(context.Background(), false, models.RemoteEnded)
	c.navigate(ScreenMain)
}

// applyParticipantEvent folds a participant flag change into the matching
// local entry. A missing gathering, a foreign meeting id or an unknown
// participant are all recoverable: logged and ignored, never a crash.
func (c *Coordinator) applyParticipantEvent(n models.Notification, mutate func(*models.Participant)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.record == nil {
		log.Printf("⚠️  %s with no active gathering, ignored", n.AdditionalData.Type)
		return
	}
	if n.AdditionalData.Meeting != 0 && c.record.ID != 0 && n.AdditionalData.Meeting != c.record.ID {
		log.Printf("⚠️  %s for meeting %d but %d is active, ignored",
			n.AdditionalData.Type, n.AdditionalData.Meeting, c.record.ID)
		return
	}
	p := c.record.Participant(n.AdditionalData.Participant)
	if p == nil {
		log.Printf("⚠️  %s for unknown participant %d, ignored",
			n.AdditionalData.Type, n.AdditionalData.Participant)
		return
	}
	mutate(p)
	log.Printf("✅ Applied %s to participant %d", n.AdditionalData.Type, n.AdditionalData.Participant)
}

func (c *Coordinator) promptNewGathering(n models.Notification) bool {
	return c.prompter.ConfirmNewGathering(n)
}

func (c *Coordinator) navigate(screen Screen) {
	if c.navigator == nil {
		return
	}
	c.navigator.Go(screen)
}
