package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a change notification pushed to open menu screens.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub tracks connected clients per business and fans messages out to the
// clients watching that business's menu.
type Hub struct {
	mu         sync.RWMutex
	businesses map[int64]map[*Client]struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		businesses: make(map[int64]map[*Client]struct{}),
		logger:     logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.businesses[c.businessID]
	if !ok {
		set = make(map[*Client]struct{})
		h.businesses[c.businessID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.businesses[c.businessID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.businesses, c.businessID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client watching businessID. A nil Hub
// drops the message.
func (h *Hub) Broadcast(businessID int64, msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.businesses[businessID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block
			h.logger.Debug("dropped message", "business_id", businessID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients across all businesses.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.businesses {
		n += len(set)
	}
	return n
}

// Watchers returns the number of clients watching businessID.
func (h *Hub) Watchers(businessID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.businesses[businessID])
}
