package websocket

import (
	"context"
	"sync"

	"messagely/internal/events"
)

var _ events.Publisher = (*Hub)(nil)

// Hub manages WebSocket client connections and channel subscriptions
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// channels maps channel name to set of clients subscribed to it
	channels map[string]map[*Client]struct{}

	// ops carries register, subscribe and unregister requests in one queue
	// so they are applied in the order they were made.
	ops chan hubOp
}

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opSubscribe
)

type hubOp struct {
	kind     opKind
	client   *Client
	channels []string
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[*Client]struct{}),
		ops:      make(chan hubOp, 1024),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-h.ops:
			switch op.kind {
			case opRegister:
				h.addClient(op.client, op.channels)
			case opUnregister:
				h.removeClient(op.client)
			case opSubscribe:
				h.subscribeToChannels(op.client, op.channels)
			}
		}
	}
}

// Register adds the client and subscribes it to channels in one step.
func (h *Hub) Register(client *Client, channels ...string) {
	h.ops <- hubOp{kind: opRegister, client: client, channels: channels}
}

func (h *Hub) Unregister(client *Client) {
	h.ops <- hubOp{kind: opUnregister, client: client}
}

func (h *Hub) Subscribe(client *Client, channel string) {
	h.ops <- hubOp{kind: opSubscribe, client: client, channels: []string{channel}}
}

// Broadcast sends a message to all clients subscribed to a channel
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	for c := range h.channels[channel] {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// Publish delivers payload to local subscribers only. It stands in for the
// redis publisher when redis is disabled.
func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	h.Broadcast(channel, payload)
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) addClient(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	for _, channel := range channels {
		h.subscribeLocked(client, channel)
	}
}

// removeClient drops the client from every channel and closes its Send
// channel. Unknown clients are ignored so Send is closed once.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, channel := range client.Channels() {
		if subscribers, ok := h.channels[channel]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.channels, channel)
			}
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) subscribeToChannels(client *Client, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	for _, channel := range channels {
		h.subscribeLocked(client, channel)
	}
}

func (h *Hub) subscribeLocked(client *Client, channel string) {
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][client] = struct{}{}
	client.subscribe(channel)
}
