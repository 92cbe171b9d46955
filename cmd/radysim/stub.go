package main

import (
	"context"
	"sync"

	"rady-client/internal/models"
	"rady-client/internal/rest"
)

// stubTransport is an in-memory meetings server for offline runs. It assigns
// ids and applies patches the way the real API would, minus validation.
type stubTransport struct {
	mu       sync.Mutex
	selfID   int
	nextID   int
	meetings map[int]*models.Gathering
}

func newStubTransport(selfID int) *stubTransport {
	return &stubTransport{
		selfID:   selfID,
		nextID:   1,
		meetings: make(map[int]*models.Gathering),
	}
}

func (s *stubTransport) CreateMeeting(ctx context.Context, req rest.CreateMeetingRequest) (*models.Gathering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := &models.Gathering{
		ID:        s.nextID,
		Organiser: models.User{ID: s.selfID},
		Type:      req.Type,
		Place:     req.Place,
		Status:    models.RemotePending,
	}
	for _, id := range req.Participants {
		created.Participants = append(created.Participants, models.Participant{
			User: models.User{ID: id},
		})
	}
	s.nextID++
	s.meetings[created.ID] = created
	return created, nil
}

func (s *stubTransport) GetMeeting(ctx context.Context, id int) (*models.Gathering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.meetings[id]; ok {
		return g, nil
	}
	return nil, &rest.APIError{Status: 404, Body: "not found"}
}

func (s *stubTransport) UpdateMeetingStatus(ctx context.Context, id int, status models.RemoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.meetings[id]; ok {
		g.Status = status
		return nil
	}
	return &rest.APIError{Status: 404, Body: "not found"}
}

func (s *stubTransport) UpdateParticipant(ctx context.Context, meetingID int, patch rest.ParticipantPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.meetings[meetingID]
	if !ok {
		return &rest.APIError{Status: 404, Body: "not found"}
	}
	if p := g.Participant(s.selfID); p != nil {
		if patch.Accepted != nil {
			p.Accepted = patch.Accepted
		}
		if patch.Arrived != nil {
			p.Arrived = *patch.Arrived
		}
	}
	return nil
}
