package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rady-client/internal/models"
)

// TestChannelDeliversNotifications verifies that frames read off the socket
// are parsed and dispatched, for both bare and wrapped payloads.
func TestChannelDeliversNotifications(t *testing.T) {
	upgrader := websocket.Upgrader{}
	authHeader := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Bare payload
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"title":"New gathering","message":"alice added you to a meeting",`+
				`"additionalData":{"type":"new-meeting","meeting":42}}`))
		// Wrapped payload
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"notification":{"additionalData":{"type":"user-arrived-to-meeting",`+
				`"meeting":42,"participant":7}}}`))

		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	dispatcher := NewDispatcher()
	received := make(chan models.Notification, 2)
	handler := func(n models.Notification) { received <- n }
	dispatcher.AddHandler(models.KindNewMeeting, handler)
	dispatcher.AddHandler(models.KindUserArrived, handler)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	channel := NewChannel(url, "push-token", dispatcher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	channel.Run(ctx)

	require.Len(t, received, 2)
	first := <-received
	assert.Equal(t, models.KindNewMeeting, first.Kind())
	assert.Equal(t, 42, first.AdditionalData.Meeting)
	second := <-received
	assert.Equal(t, models.KindUserArrived, second.Kind())
	assert.Equal(t, 7, second.AdditionalData.Participant)

	assert.Equal(t, "Bearer push-token", <-authHeader)
}

// TestChannelDialFailure verifies that an unreachable endpoint is reported
// as an error.
func TestChannelDialFailure(t *testing.T) {
	channel := NewChannel("ws://127.0.0.1:1/push", "", NewDispatcher())
	err := channel.Run(context.Background())
	require.Error(t, err)
}

// TestChannelContextCancel verifies that canceling the context shuts the
// channel down cleanly.
func TestChannelContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		// Hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	channel := NewChannel(url, "", NewDispatcher())

	done := make(chan error, 1)
	go func() { done <- channel.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not shut down after context cancel")
	}
}
