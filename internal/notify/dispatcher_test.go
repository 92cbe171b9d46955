package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rady-client/internal/models"
)

func push(kind string) models.Notification {
	return models.Notification{
		Title:          "test",
		AdditionalData: models.NotificationData{Type: kind, Meeting: 42},
	}
}

// TestDispatcherRouting verifies that notifications reach the handler
// registered for their kind.
func TestDispatcherRouting(t *testing.T) {
	d := NewDispatcher()

	var accepted, refused int
	d.AddHandler(models.KindUserAccepted, func(n models.Notification) { accepted++ })
	d.AddHandler(models.KindUserRefused, func(n models.Notification) { refused++ })

	d.Notify(push("user-accepted-meeting"))
	d.Notify(push("user-accepted-meeting"))
	d.Notify(push("user-refused-meeting"))

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 1, refused)
}

// TestDispatcherDefaultHandler verifies that unknown kinds fall through to
// the default handler instead of being dropped or crashing.
func TestDispatcherDefaultHandler(t *testing.T) {
	d := NewDispatcher()

	var fallback []string
	d.SetDefaultHandler(func(n models.Notification) {
		fallback = append(fallback, n.AdditionalData.Type)
	})
	d.AddHandler(models.KindUserAccepted, func(n models.Notification) {})

	d.Notify(push("no-such-kind"))
	d.Notify(push("friend-request"))
	d.Notify(push("user-accepted-meeting"))

	assert.Equal(t, []string{"no-such-kind", "friend-request"}, fallback)
}

// TestDispatcherReentrantNotify verifies FIFO draining: a notification issued
// from inside a handler is delivered after the current one, not nested.
func TestDispatcherReentrantNotify(t *testing.T) {
	d := NewDispatcher()

	var order []string
	d.AddHandler(models.KindNewMeeting, func(n models.Notification) {
		order = append(order, "new:start")
		d.Notify(push("user-accepted-meeting"))
		order = append(order, "new:end")
	})
	d.AddHandler(models.KindUserAccepted, func(n models.Notification) {
		order = append(order, "accepted")
	})

	d.Notify(push("new-meeting"))

	assert.Equal(t, []string{"new:start", "new:end", "accepted"}, order)
}
