package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"supportchat/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the Client interface over a gorilla/websocket
// connection. adminCapable is the transport layer's verdict on whether this
// session may claim the admin role; a join declaring isAdmin without the
// capability is bound as a plain visitor declaration.
type WebSocketClient struct {
	Conn   *websocket.Conn
	Bridge *Bridge
	Send   chan models.OutboundMessage

	registration *Registration
	adminCapable bool

	once sync.Once
	done chan struct{}
}

// NewWebSocketClient wraps an upgraded connection and registers it, role
// unbound, with the registry.
func NewWebSocketClient(conn *websocket.Conn, registry *Registry, bridge *Bridge, adminCapable bool) *WebSocketClient {
	c := &WebSocketClient{
		Conn:         conn,
		Bridge:       bridge,
		Send:         make(chan models.OutboundMessage, 256),
		adminCapable: adminCapable,
		done:         make(chan struct{}),
	}
	c.registration = registry.Register(c)
	return c
}

func (c *WebSocketClient) GetID() string { return c.registration.GetID() }

func (c *WebSocketClient) GetSendChannel() chan<- models.OutboundMessage { return c.Send }

// Registration exposes the connection's registry handle.
func (c *WebSocketClient) Registration() *Registration { return c.registration }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump and closes the underlying connection. The Send
// channel stays open so an in-flight broadcast can never hit a closed channel.
func (c *WebSocketClient) Close() {
	c.once.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.registration.Release()
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed payloads are dropped; the channel stays open.
			log.Printf("Error decoding JSON from connection %s: %v", c.GetID(), err)
			continue
		}

		switch env.Type {
		case models.EventJoin:
			c.Bridge.OnJoin(c.registration, env.SessionID, env.IsAdmin && c.adminCapable)
		case models.EventMessage:
			c.Bridge.OnMessage(c.registration, env.Content, env.ConversationID)
		default:
			log.Printf("WARNING: unknown event type %q from connection %s", env.Type, c.GetID())
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))

			dataToWrite, err := json.Marshal(message)
			if err != nil {
				log.Printf("Error encoding JSON for connection %s: %v", c.GetID(), err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(dataToWrite)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
