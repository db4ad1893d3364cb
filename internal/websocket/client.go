package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string
	Username string
	Conn     *websocket.Conn
	Send     chan []byte

	mu       sync.RWMutex
	channels map[string]bool
}

func NewClient(conn *websocket.Conn, username string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		channels: make(map[string]bool),
	}
}

func (c *Client) subscribe(channel string) {
	c.mu.Lock()
	c.channels[channel] = true
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

// Channels returns a copy of all subscribed channels
func (c *Client) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	channels := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		channels = append(channels, ch)
	}
	return channels
}

// WriteLoop drains Send to the connection and pings it periodically. It
// closes the connection when Send is closed or ctx ends.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadLoop discards inbound frames and returns when the peer goes away.
func (c *Client) ReadLoop() {
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// SendMessage queues msg without blocking. Messages for a slow client are
// dropped.
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
	}
}
