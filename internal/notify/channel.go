package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rady-client/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Channel receives server pushes over a WebSocket connection and feeds them
// into a Dispatcher.
type Channel struct {
	url        string
	token      string
	dispatcher *Dispatcher
}

// NewChannel creates a push channel for the given WebSocket URL.
// The token, when non-empty, is sent as a bearer Authorization header on dial.
func NewChannel(url, token string, dispatcher *Dispatcher) *Channel {
	return &Channel{url: url, token: token, dispatcher: dispatcher}
}

// Run dials the push endpoint and pumps notifications into the dispatcher
// until the context is canceled or the connection fails.
func (c *Channel) Run(ctx context.Context) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("push channel dial failed: %w", err)
	}
	defer conn.Close()
	log.Printf("✅ Push channel connected to %s", c.url)

	// Close the connection when the context ends so the read loop unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		case <-done:
		}
	}()

	// Keepalive pings
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			case <-done:
				return
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var notification notificationFrame
		if err := conn.ReadJSON(&notification); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("📪 Push channel closed")
				return nil
			}
			log.Printf("❌ Push channel error: %v", err)
			return fmt.Errorf("push channel read failed: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		c.dispatcher.Notify(notification.Notification)
	}
}

// notificationFrame tolerates both bare payloads and {"notification": ...}
// wrappers on the wire
type notificationFrame struct {
	Notification models.Notification
}

func (f *notificationFrame) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Notification *models.Notification `json:"notification"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Notification != nil {
		f.Notification = *wrapped.Notification
		return nil
	}
	return json.Unmarshal(data, &f.Notification)
}
