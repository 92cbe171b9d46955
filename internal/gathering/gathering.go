// Package gathering implements the meetup lifecycle coordinator: a single
// active gathering tracked through creation, pending, running and terminal
// states, reconciled against server pushes and a live location stream.
package gathering

import (
	"context"
	"errors"

	"rady-client/internal/models"
	"rady-client/internal/rest"
)

// Transport is the meetings API the coordinator talks to. *rest.Client
// satisfies it.
type Transport interface {
	CreateMeeting(ctx context.Context, req rest.CreateMeetingRequest) (*models.Gathering, error)
	GetMeeting(ctx context.Context, id int) (*models.Gathering, error)
	UpdateMeetingStatus(ctx context.Context, id int, status models.RemoteStatus) error
	UpdateParticipant(ctx context.Context, meetingID int, patch rest.ParticipantPatch) error
}

// Screen is an opaque navigation token. The coordinator never knows concrete
// screens; it only asks the Navigator to go to one of these.
type Screen string

const (
	ScreenMain    Screen = "main"
	ScreenPending Screen = "pending"
	ScreenRunning Screen = "running"
)

// Navigator is the caller-supplied navigation capability
type Navigator interface {
	Go(screen Screen)
}

// Prompter is the caller-supplied decision surface for push-driven prompts
type Prompter interface {
	// ConfirmNewGathering asks the user about an incoming invitation.
	// True means view it, false means decline it.
	ConfirmNewGathering(n models.Notification) bool

	// Acknowledge informs the user that the gathering finished or was
	// canceled, blocking until dismissed.
	Acknowledge(n models.Notification)
}

var (
	// ErrGatheringActive is returned by Set when a gathering is already installed
	ErrGatheringActive = errors.New("a gathering is already active")

	// ErrNoGathering is returned by operations that need an active gathering
	ErrNoGathering = errors.New("no active gathering")

	// ErrPrecondition is returned when an operation is called in the wrong status
	ErrPrecondition = errors.New("operation not allowed in current status")

	// ErrOperationInFlight is returned when a mutating operation is attempted
	// while another one is still awaiting its network round trip
	ErrOperationInFlight = errors.New("another operation is in flight")

	// ErrBadTransition is returned by Transition for an illegal status change
	ErrBadTransition = errors.New("illegal status transition")

	// ErrNotInitiator is returned when a participant attempts an initiator-only operation
	ErrNotInitiator = errors.New("only the initiator may do this")
)
