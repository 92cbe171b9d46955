package models

import "time"

// Status represents the local lifecycle state of a gathering.
// It includes client-side sub-states ("create", "request") the server never sees.
type Status string

const (
	StatusNone     Status = "none"     // No active gathering
	StatusCreate   Status = "create"   // Being assembled locally, not yet posted
	StatusRequest  Status = "request"  // Received via push, awaiting the user's answer
	StatusPending  Status = "pending"  // Created/viewed, waiting for everyone to respond
	StatusRunning  Status = "running"  // Meeting in progress
	StatusEnded    Status = "ended"    // Terminal, closed normally
	StatusCanceled Status = "canceled" // Terminal, canceled
)

// Role is the local user's relationship to the active gathering
type Role string

const (
	RoleInitiator   Role = "initiator"
	RoleParticipant Role = "participant"
	RoleUnknown     Role = "unknown"
)

// RemoteStatus is the server-side vocabulary for a meeting's status
type RemoteStatus string

const (
	RemotePending  RemoteStatus = "pending"
	RemoteProgress RemoteStatus = "progress"
	RemoteEnded    RemoteStatus = "ended"
	RemoteCanceled RemoteStatus = "canceled"
)

// MeetingType selects how the server resolves the meeting point
type MeetingType string

const (
	MeetingTypePlace    MeetingType = "place"    // Fixed destination chosen by the initiator
	MeetingTypePerson   MeetingType = "person"   // Meet on a chosen participant
	MeetingTypeShortest MeetingType = "shortest" // Server computes the shortest meeting point
)

// Place represents the destination of a gathering
type Place struct {
	ID        int     `json:"id,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"` // User-given label, may be empty
}

// Participant is an invited user's entry in a gathering.
// Accepted is tri-state: nil means no answer has been given yet.
type Participant struct {
	User     User  `json:"user"`
	Accepted *bool `json:"accepted"`
	Arrived  bool  `json:"arrived"`
}

// HasAccepted reports whether the participant explicitly accepted
func (p *Participant) HasAccepted() bool {
	return p.Accepted != nil && *p.Accepted
}

// Gathering is the server-side representation of a meetup
type Gathering struct {
	ID           int           `json:"id,omitempty"`
	Organiser    User          `json:"organiser"`
	Type         MeetingType   `json:"type"`
	Place        *Place        `json:"place,omitempty"` // Nil until the server resolves it
	Participants []Participant `json:"participants"`
	Status       RemoteStatus  `json:"status,omitempty"`
	MeetingTime  *time.Time    `json:"meeting_time,omitempty"`
}

// Participant returns the entry for the given user id, or nil when absent
func (g *Gathering) Participant(userID int) *Participant {
	for i := range g.Participants {
		if g.Participants[i].User.ID == userID {
			return &g.Participants[i]
		}
	}
	return nil
}

// Destination returns the meeting point coordinates, if resolved
func (g *Gathering) Destination() (lat, lon float64, ok bool) {
	if g.Place == nil {
		return 0, 0, false
	}
	return g.Place.Latitude, g.Place.Longitude, true
}
