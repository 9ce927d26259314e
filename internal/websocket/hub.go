package consolews

import (
	"context"
	"encoding/json"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/ferazfhansurie/jutaCRM/internal/session"
)

// Hub fans console updates out to every dashboard client of a tenant.
// Clients of different tenants never see each other's traffic.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *event
}

type event struct {
	tenantID string
	update   session.Update
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	id       string
	tenantID string
	session  *session.ChatSession
	send     chan []byte
	pumpDone chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, tenantID string, sess *session.ChatSession) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		id:       uuid.NewString(),
		tenantID: tenantID,
		session:  sess,
		send:     make(chan []byte, 32),
		pumpDone: make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.tenantID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.tenantID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.tenantID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.tenantID)
			}
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast pushes an update to every connected client of a tenant.
// Used by the REST side so a send through the API shows up in open
// consoles without a refresh.
func (h *Hub) Broadcast(tenantID string, update session.Update) {
	select {
	case h.broadcast <- &event{tenantID: tenantID, update: update}:
	default:
		log.Printf("console hub: dropping update for tenant %s", tenantID)
	}
}

func (h *Hub) deliver(ev *event) {
	encoded, err := json.Marshal(ev.update)
	if err != nil {
		log.Printf("console hub encode update: %v", err)
		return
	}

	set, ok := h.clients[ev.tenantID]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.send <- encoded:
		default:
			// Slow consumer; drop this update. send is closed only by
			// the unregister case, after the client's writers have
			// stopped, so no other goroutine ever sends on a closed
			// channel.
			log.Printf("console hub: dropping update for client %s", client.id)
		}
	}
}

// ReadPump turns incoming frames into session operations: loading the
// chat list, switching the selected chat, sending a message.
func (c *Client) ReadPump() {
	defer func() {
		c.session.Close()
		<-c.pumpDone
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type   string `json:"type"`
			ChatID string `json:"chat_id"`
			Body   string `json:"body"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid message payload")
			continue
		}

		switch incoming.Type {
		case "load_chats":
			if err := c.session.LoadChats(context.Background()); err != nil {
				log.Printf("console %s load chats: %v", c.id, err)
			}
		case "select_chat":
			c.session.SelectChat(incoming.ChatID)
		case "message":
			if err := c.session.Send(context.Background(), incoming.Body); err != nil {
				log.Printf("console %s send: %v", c.id, err)
			}
		default:
			c.writeError("unsupported message type")
		}
	}
}

// PumpSession forwards the session's updates into the write channel.
// It exits when the session is closed, before the client unregisters,
// so it never writes to a channel the hub has already closed.
func (c *Client) PumpSession() {
	defer close(c.pumpDone)
	for update := range c.session.Updates() {
		encoded, err := json.Marshal(update)
		if err != nil {
			log.Printf("console %s encode update: %v", c.id, err)
			continue
		}
		select {
		case c.send <- encoded:
		default:
			// Slow writer; drop the update.
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(session.Update{
		Kind:  session.UpdateError,
		Error: message,
	})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
