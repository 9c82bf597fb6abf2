package websocket

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum command frame size allowed from peer.
	maxMessageSize = 1024

	// Outbound lines queued per client before it is dropped.
	sendQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from other origins during development
		return true
	},
}

// Attacher seats new peers into matches
type Attacher interface {
	Attach(peer session.Peer) (*session.Seat, error)
}

// Client is a player connected over WebSocket. Each text frame it sends is
// one command line and each line it receives is one text frame.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	matchID string

	mu     sync.Mutex
	send   chan string
	closed bool
}

// Hub seats WebSocket players and keeps track of the live connections per
// match
type Hub struct {
	sessions Attacher
	log      zerolog.Logger

	// Registered clients by match ID
	matches map[string]map[*Client]bool

	// Register requests from seated clients
	register chan *Client

	// Unregister requests from disconnected clients
	unregister chan *Client

	// Client count requests
	stats chan chan int

	// Closed when Run returns
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub(sessions Attacher, log zerolog.Logger) *Hub {
	return &Hub{
		sessions:   sessions,
		log:        log,
		matches:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stats:      make(chan chan int),
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.stopped) })

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case reply := <-h.stats:
			n := 0
			for _, clients := range h.matches {
				n += len(clients)
			}
			reply <- n
		}
	}
}

// ClientCount returns the number of seated WebSocket players, or 0 once
// the hub has stopped
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.stats <- reply:
		return <-reply
	case <-h.stopped:
		return 0
	}
}

// enqueue hands a client to the event loop unless the hub has stopped
func (h *Hub) enqueue(ch chan *Client, client *Client) {
	select {
	case ch <- client:
	case <-h.stopped:
	}
}

// ServeWS upgrades the request and seats the connection as a player
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan string, sendQueue),
	}
	go client.writePump()

	seat, err := h.sessions.Attach(client)
	if err != nil {
		h.log.Debug().Err(err).Str("addr", client.Addr()).Msg("websocket player not seated")
		return
	}
	client.matchID = seat.Match().ID

	h.enqueue(h.register, client)
	go client.readPump(seat)
}

// registerClient adds a client to its match
func (h *Hub) registerClient(client *Client) {
	if h.matches[client.matchID] == nil {
		h.matches[client.matchID] = make(map[*Client]bool)
	}
	h.matches[client.matchID][client] = true

	h.log.Debug().Str("match", client.matchID).Int("clients", len(h.matches[client.matchID])).
		Msg("websocket client registered")
}

// unregisterClient removes a client from its match
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.matches[client.matchID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)

			// Clean up empty matches
			if len(clients) == 0 {
				delete(h.matches, client.matchID)
			}

			h.log.Debug().Str("match", client.matchID).Int("clients", len(clients)).
				Msg("websocket client unregistered")
		}
	}
}

// Addr returns the remote address
func (c *Client) Addr() string {
	return c.conn.RemoteAddr().String()
}

// Deliver queues one line without blocking
func (c *Client) Deliver(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- line:
		return true
	default:
		return false
	}
}

// Close stops accepting lines; writePump sends what is queued and then a
// close frame
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump feeds inbound frames to the seat until the connection fails
func (c *Client) readPump(seat *session.Seat) {
	defer func() {
		seat.Leave()
		c.hub.enqueue(c.hub.unregister, c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("addr", c.Addr()).Msg("websocket read failed")
			}
			return
		}
		// a frame may carry several commands, one per line
		for _, line := range strings.Split(string(message), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			seat.Handle(line)
		}
	}
}

// writePump pumps queued lines to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case line, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Close was called and the queue is drained
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
