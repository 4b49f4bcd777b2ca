// Package socket pushes document changes to websocket subscribers, grouped
// into one room per tenant.
package socket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/matteuzdev/VerbAI-Studio/docstore"
	"github.com/rs/zerolog/log"
)

const (
	HelloType  = "HELLO"  // Sent once to a client after it joins
	ChangeType = "CHANGE" // A segment of the tenant was written
)

type WSMessage struct {
	Type     string          `json:"type"`
	TenantID string          `json:"tenant_id"`
	ClientID string          `json:"client_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run serves the hub channels until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for tenantID, room := range h.Rooms {
				for client := range room {
					close(client.Send)
				}
				delete(h.Rooms, tenantID)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.TenantID] == nil {
				h.Rooms[client.TenantID] = make(map[*Client]bool)
			}
			h.Rooms[client.TenantID][client] = true
			h.mu.Unlock()

			hello, _ := json.Marshal(WSMessage{Type: HelloType, TenantID: client.TenantID, ClientID: client.ID})
			client.Send <- hello
			log.Debug().Str("tenant", client.TenantID).Str("client", client.ID).Msg("websocket client joined")

		case client := <-h.Unregister:
			h.remove(client)

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Err(err).Msg("failed to encode broadcast message")
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.TenantID]))
			for client := range h.Rooms[msg.TenantID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					log.Warn().Str("client", client.ID).Msg("websocket send buffer full, dropping client")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Rooms[client.TenantID][client]; !ok {
		return
	}
	delete(h.Rooms[client.TenantID], client)
	close(client.Send)
	if len(h.Rooms[client.TenantID]) == 0 {
		delete(h.Rooms, client.TenantID)
	}
}

// Notify queues a change for the tenant's room. It never blocks the writer;
// when the queue is full the change is dropped.
func (h *Hub) Notify(change docstore.Change) {
	payload, _ := json.Marshal(change)
	select {
	case h.Broadcast <- WSMessage{Type: ChangeType, TenantID: change.TenantID, Payload: payload}:
	default:
		log.Warn().Str("tenant", change.TenantID).Msg("websocket broadcast queue full, dropping change")
	}
}

// Clients reports how many clients are connected for a tenant.
func (h *Hub) Clients(tenantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[tenantID])
}
