package rest

import (
	"context"
	"fmt"
	"log"

	"rady-client/internal/models"
)

// CreateMeetingRequest is the POST /meetings/ payload
type CreateMeetingRequest struct {
	Type         models.MeetingType `json:"type"`
	Place        *models.Place      `json:"place,omitempty"`
	Participants []int              `json:"participants"`
	MeetingTime  string             `json:"meeting_time,omitempty"` // UTC ISO format, optional
}

// ParticipantPatch is the PATCH /meetings/{id}/participants/ payload.
// Only the non-nil fields are sent.
type ParticipantPatch struct {
	Accepted *bool `json:"accepted,omitempty"`
	Arrived  *bool `json:"arrived,omitempty"`
}

// CreateMeeting posts a new meeting and returns the server-assigned record
func (c *Client) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (*models.Gathering, error) {
	var created models.Gathering
	if err := c.Post(ctx, "/meetings/", req, &created); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	log.Printf("✅ Meeting created (id=%d, %d participants)", created.ID, len(created.Participants))
	return &created, nil
}

// GetMeeting fetches the authoritative record of a meeting by id
func (c *Client) GetMeeting(ctx context.Context, id int) (*models.Gathering, error) {
	var gathering models.Gathering
	if err := c.Get(ctx, fmt.Sprintf("/meetings/%d/", id), &gathering); err != nil {
		return nil, fmt.Errorf("get meeting %d: %w", id, err)
	}
	return &gathering, nil
}

// UpdateMeetingStatus patches the status of a meeting (initiator only, server-enforced)
func (c *Client) UpdateMeetingStatus(ctx context.Context, id int, status models.RemoteStatus) error {
	body := map[string]models.RemoteStatus{"status": status}
	if err := c.Patch(ctx, fmt.Sprintf("/meetings/%d/", id), body, nil); err != nil {
		return fmt.Errorf("update meeting %d status to %q: %w", id, status, err)
	}
	return nil
}

// UpdateParticipant patches the caller's own participation in a meeting
func (c *Client) UpdateParticipant(ctx context.Context, meetingID int, patch ParticipantPatch) error {
	if err := c.Patch(ctx, fmt.Sprintf("/meetings/%d/participants/", meetingID), patch, nil); err != nil {
		return fmt.Errorf("update participant of meeting %d: %w", meetingID, err)
	}
	return nil
}
