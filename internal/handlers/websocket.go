package handlers

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/notify"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string         `json:"type"`
	Payload *notify.Banner `json:"payload,omitempty"`
}

// pageConn is one console page connected to the hub
type pageConn struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of console pages and pushes banner changes to them
type Hub struct {
	// Connected console pages
	pages map[*pageConn]bool

	// Banner changes to push to every page
	broadcast chan []byte

	// Pages joining
	register chan *pageConn

	// Pages leaving
	unregister chan *pageConn

	done   chan struct{}
	logger logging.Logger
}

// NewHub creates a new hub
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Hub{
		broadcast:  make(chan []byte, 16),
		register:   make(chan *pageConn),
		unregister: make(chan *pageConn),
		pages:      make(map[*pageConn]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// bannerMessage encodes a banner change. A nil banner is a clear.
func bannerMessage(banner *notify.Banner) []byte {
	msg := WebSocketMessage{Type: "banner", Payload: banner}
	if banner == nil {
		msg.Type = "banner_cleared"
	}
	data, _ := json.Marshal(msg)
	return data
}

// Run starts the hub and relays notifier changes until Stop is called
func (h *Hub) Run(notifier *notify.Notifier) {
	unsubscribe := notifier.Subscribe(func(banner *notify.Banner) {
		select {
		case h.broadcast <- bannerMessage(banner):
		case <-h.done:
		}
	})
	defer unsubscribe()

	for {
		select {
		case page := <-h.register:
			h.pages[page] = true
		case page := <-h.unregister:
			if _, ok := h.pages[page]; ok {
				delete(h.pages, page)
				close(page.send)
			}
		case message := <-h.broadcast:
			for page := range h.pages {
				select {
				case page.send <- message:
				default:
					close(page.send)
					delete(h.pages, page)
				}
			}
		case <-h.done:
			for page := range h.pages {
				close(page.send)
				delete(h.pages, page)
			}
			return
		}
	}
}

// Stop ends Run and disconnects every page
func (h *Hub) Stop() {
	close(h.done)
}

// readPump drains the connection so pongs and close frames are processed
func (c *pageConn) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *pageConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades a console page connection and sends it the current
// banner before relaying changes.
func ServeWs(hub *Hub, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		page := &pageConn{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, 16),
		}

		if banner, ok := notifier.Current(); ok {
			page.send <- bannerMessage(&banner)
		}

		select {
		case hub.register <- page:
		case <-hub.done:
			conn.Close()
			return
		}

		go page.writePump()
		go page.readPump()
	}
}
