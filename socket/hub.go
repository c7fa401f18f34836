package socket

import (
	"context"
	"encoding/json"
	"sync"

	"sosmed/messaging"
	"sosmed/pkg/logger"

	"github.com/gorilla/websocket"
)

// Envelope is one encoded notification and the accounts it goes to.
type Envelope struct {
	Recipients []string
	Payload    []byte
}

// Hub keeps the live connections of every signed-in account and pushes
// notifications to them. One account may hold several connections.
type Hub struct {
	Clients    map[string]map[*Client]bool
	Broadcast  chan Envelope
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	AccountID string
	Send      chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Broadcast:  make(chan Envelope, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Clients[client.AccountID] == nil {
				h.Clients[client.AccountID] = make(map[*Client]bool)
			}
			h.Clients[client.AccountID][client] = true
			h.mu.Unlock()
			logger.Sugar.Debugf("Account %s connected", client.AccountID)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case env := <-h.Broadcast:
			h.mu.Lock()
			clientsToSend := make(map[*Client]bool)
			for _, id := range env.Recipients {
				for client := range h.Clients[id] {
					clientsToSend[client] = true
				}
			}

			for client := range clientsToSend {
				select {
				case client.Send <- env.Payload:
				default:
					// Send buffer full: the client is lagging, drop it.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.AccountID)
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	conns, ok := h.Clients[client.AccountID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.Send)
	if len(conns) == 0 {
		delete(h.Clients, client.AccountID)
	}
}

// Publish queues ev for its recipients. Events without recipients are ignored.
func (h *Hub) Publish(ctx context.Context, ev messaging.Event) error {
	if len(ev.Recipients) == 0 {
		return nil
	}
	recipients := ev.Recipients
	ev.Recipients, ev.Origin = nil, ""
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- Envelope{Recipients: recipients, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectionCount reports the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, conns := range h.Clients {
		n += len(conns)
	}
	return n
}
