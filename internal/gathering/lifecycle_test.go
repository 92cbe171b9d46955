package gathering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rady-client/internal/models"
)

// TestCreateEndToEnd walks the initiator's happy path: create with a
// destination and two participants, server assigns id 42, then an accept by
// participant 7 flips only that participant's flag.
func TestCreateEndToEnd(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()
	transport.createResp = serverGathering(42)

	require.NoError(t, coord.Set(draftGathering(), models.StatusCreate))
	require.NoError(t, coord.Create(ctx))

	// Wire payload carried the destination and both participant ids
	require.Len(t, transport.createCalls, 1)
	req := transport.createCalls[0]
	assert.Equal(t, models.MeetingTypePlace, req.Type)
	assert.Equal(t, 48.8, req.Place.Latitude)
	assert.Equal(t, 2.3, req.Place.Longitude)
	assert.Equal(t, []int{7, 9}, req.Participants)

	// Record was replaced by the server-assigned one, status untouched
	record := coord.Record()
	assert.Equal(t, 42, record.ID)
	assert.Equal(t, models.StatusCreate, coord.Status())
	require.NoError(t, coord.Transition(models.StatusPending))

	// Accept marks the local user (id 7) and nobody else
	require.NoError(t, coord.Accept(ctx))
	record = coord.Record()
	require.True(t, record.Participant(7).HasAccepted())
	assert.Nil(t, record.Participant(9).Accepted)
}

// TestCreatePreconditions verifies that create refuses to run outside the
// create sub-state or without destination and participants.
func TestCreatePreconditions(t *testing.T) {
	ctx := context.Background()

	coord, _, _ := newTestCoordinator()
	require.ErrorIs(t, coord.Create(ctx), ErrPrecondition)

	// No destination
	coord, _, _ = newTestCoordinator()
	g := draftGathering()
	g.Place = nil
	require.NoError(t, coord.Set(g, models.StatusCreate))
	require.ErrorIs(t, coord.Create(ctx), ErrPrecondition)

	// No participants
	coord, _, _ = newTestCoordinator()
	g = draftGathering()
	g.Participants = nil
	require.NoError(t, coord.Set(g, models.StatusCreate))
	require.ErrorIs(t, coord.Create(ctx), ErrPrecondition)
}

// TestCreateFailureLeavesStateUnchanged verifies that a failed create leaves
// the draft intact so the caller may retry.
func TestCreateFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()
	transport.createErr = errors.New("connection refused")

	require.NoError(t, coord.Set(draftGathering(), models.StatusCreate))
	require.Error(t, coord.Create(ctx))

	assert.Equal(t, models.StatusCreate, coord.Status())
	assert.Equal(t, 0, coord.Record().ID)

	// Retry succeeds once the network is back
	transport.createErr = nil
	transport.createResp = serverGathering(42)
	require.NoError(t, coord.Create(ctx))
	assert.Equal(t, 42, coord.Record().ID)
}

// TestAcceptAdvancesRequest verifies the invitee path: accepting an
// unanswered request advances it to pending.
func TestAcceptAdvancesRequest(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()

	require.NoError(t, coord.Set(serverGathering(42), models.StatusRequest))
	require.NoError(t, coord.Accept(ctx))

	assert.Equal(t, models.StatusPending, coord.Status())
	require.Len(t, transport.participantCalls, 1)
	require.NotNil(t, transport.participantCalls[0].patch.Accepted)
	assert.True(t, *transport.participantCalls[0].patch.Accepted)
}

// TestAcceptFailureLeavesEntryUnmodified verifies the failure contract of
// participant patches.
func TestAcceptFailureLeavesEntryUnmodified(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()
	transport.patchErr = errors.New("503 service unavailable")

	require.NoError(t, coord.Set(serverGathering(42), models.StatusRequest))
	require.Error(t, coord.Accept(ctx))

	assert.Equal(t, models.StatusRequest, coord.Status())
	assert.Nil(t, coord.Record().Participant(7).Accepted)
}

// TestArrivedRequiresRunning verifies the arrived precondition.
func TestArrivedRequiresRunning(t *testing.T) {
	ctx := context.Background()
	coord, _, _ := newTestCoordinator()

	require.NoError(t, coord.Set(serverGathering(42), models.StatusPending))
	require.ErrorIs(t, coord.Arrived(ctx), ErrPrecondition)

	require.NoError(t, coord.Transition(models.StatusRunning))
	require.NoError(t, coord.Arrived(ctx))
	assert.True(t, coord.Record().Participant(7).Arrived)
}

// TestStopInitiatorOnly verifies that a participant cannot stop the meeting.
func TestStopInitiatorOnly(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()

	require.NoError(t, coord.Set(serverGathering(42), models.StatusPending))
	require.ErrorIs(t, coord.Stop(ctx, models.RemoteEnded), ErrNotInitiator)
	assert.Empty(t, transport.statusCalls)
}

// TestSingleFlightGate verifies that a second mutating operation is rejected
// while one is awaiting its round trip, and allowed again afterwards.
func TestSingleFlightGate(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()
	require.NoError(t, coord.Set(serverGathering(42), models.StatusPending))

	transport.blockParticipant = make(chan struct{})
	transport.participantEntered = make(chan struct{}, 1)
	acceptDone := make(chan error, 1)
	go func() { acceptDone <- coord.Accept(ctx) }()

	// Wait until the accept is inside its round trip, holding the gate
	select {
	case <-transport.participantEntered:
	case <-time.After(time.Second):
		t.Fatal("accept never reached the transport")
	}
	require.ErrorIs(t, coord.Decline(ctx), ErrOperationInFlight)

	close(transport.blockParticipant)
	require.NoError(t, <-acceptDone)

	// Gate released: the decline now goes through
	transport.mu.Lock()
	transport.blockParticipant = nil
	transport.mu.Unlock()
	require.NoError(t, coord.Decline(ctx))
}

// TestFetchReplacesRecord verifies that fetch adopts the authoritative record
// when a gathering is active and leaves the held one alone on failure.
func TestFetchReplacesRecord(t *testing.T) {
	ctx := context.Background()
	coord, transport, _ := newTestCoordinator()

	stale := serverGathering(42)
	require.NoError(t, coord.Set(stale, models.StatusPending))

	fresh := serverGathering(42)
	accepted := true
	fresh.Participants[1].Accepted = &accepted
	fresh.Status = models.RemoteProgress
	transport.getResp[42] = fresh

	fetched, err := coord.Fetch(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.RemoteProgress, fetched.Status)
	assert.True(t, coord.Record().Participant(9).HasAccepted())

	// Failure leaves the record as previously held
	transport.getErr = errors.New("timeout")
	_, err = coord.Fetch(ctx, 42)
	require.Error(t, err)
	assert.True(t, coord.Record().Participant(9).HasAccepted())
}
