package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// PresenceStore persists online/offline transitions so profile reads and
// roster bootstraps reflect connection state.
type PresenceStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Hub manages all active WebSocket clients and routes events. Delivery
// is participant-filtered: message events only ever go to the sender and
// recipient of the affected row.
type Hub struct {
	// clients maps memberID → client.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	deliver    chan *deliverMsg

	presence PresenceStore
}

type deliverMsg struct {
	to   []uuid.UUID
	data []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *deliverMsg, 256),
	}
}

// SetPresenceStore sets the store notified on connect/disconnect
// (optional dependency).
func (h *Hub) SetPresenceStore(s PresenceStore) {
	h.presence = s
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// A reconnect (refresh, new tab) supersedes the previous
			// connection for the same member; the old one is shut down
			// here so its later unregister cannot evict the new one.
			if old, ok := h.clients[client.memberID]; ok && old != client {
				close(old.send)
				close(old.done)
			}
			h.clients[client.memberID] = client
			log.Printf("ws hub: member %s connected (%d total)", client.memberID, len(h.clients))
			h.setStatus(client.memberID, "online")
			h.broadcastPresence(client.memberID, "online")

		case client := <-h.unregister:
			// Evict only if this exact connection is still the
			// registered one. A superseded connection unregistering
			// must not tear down its replacement.
			if h.clients[client.memberID] == client {
				delete(h.clients, client.memberID)
				close(client.send)
				close(client.done)
				log.Printf("ws hub: member %s disconnected (%d total)", client.memberID, len(h.clients))
				h.setStatus(client.memberID, "offline")
				h.broadcastPresence(client.memberID, "offline")
			}

		case msg := <-h.deliver:
			for _, id := range msg.to {
				client, ok := h.clients[id]
				if !ok {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, client.memberID)
					close(client.send)
					close(client.done)
				}
			}
		}
	}
}

// DeliverToMembers sends an event to each of the given members that is
// currently connected.
func (h *Hub) DeliverToMembers(event *Event, memberIDs ...uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.deliver <- &deliverMsg{to: memberIDs, data: data}
}

// broadcastPresence sends online/offline to all connected clients.
func (h *Hub) broadcastPresence(memberID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, PresencePayload{
		MemberID: memberID,
		Status:   status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, client := range h.clients {
		if client.memberID == memberID {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) setStatus(memberID uuid.UUID, status string) {
	if h.presence == nil {
		return
	}
	go func() {
		if err := h.presence.UpdateStatus(context.Background(), memberID, status); err != nil {
			log.Printf("ws hub: persist %s status for %s: %v", status, memberID, err)
		}
	}()
}
