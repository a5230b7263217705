// Package ws fans task events out to websocket subscribers grouped by channel.
package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gorilla/websocket"

	"github.com/taskito/backend/adapters/events"
)

// TasksChannel receives every task event published on the broker.
const TasksChannel = "tasks"

// Hub tracks websocket connections grouped by channel name and broadcasts
// payloads to every member of a channel.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*websocket.Conn]*client
	logger   *slog.Logger
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// write serializes writes per connection; gorilla connections allow only one
// concurrent writer.
func (c *client) write(messageType int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, payload)
}

// NewHub creates a new connection hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*websocket.Conn]*client),
		logger:   logger,
	}
}

func (h *Hub) register(channel string, conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*websocket.Conn]*client)
	}
	cl := &client{conn: conn}
	h.channels[channel][conn] = cl
	h.logger.Info("websocket connected", "channel", channel, "clients", len(h.channels[channel]))
	return cl
}

func (h *Hub) unregister(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.channels[channel], conn)
	if len(h.channels[channel]) == 0 {
		delete(h.channels, channel)
	}
	h.logger.Info("websocket disconnected", "channel", channel)
}

// Broadcast sends a payload to every connection on the channel. Connections
// that fail to accept the write are dropped.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.channels[channel]))
	for _, cl := range h.channels[channel] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		if err := cl.write(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("websocket write failed", "channel", channel, "error", err)
			cl.conn.Close()
			h.unregister(channel, cl.conn)
		}
	}
}

// ClientCount returns the number of connections on a channel.
func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Run bridges the task event stream into the tasks channel. It blocks until
// the context is cancelled or the subscription closes.
func (h *Hub) Run(ctx context.Context, subscriber message.Subscriber) error {
	messages, err := subscriber.Subscribe(ctx, events.TaskTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		h.Broadcast(TasksChannel, msg.Payload)
		msg.Ack()
	}
	return nil
}
