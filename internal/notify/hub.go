package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// ErrHubFull is returned when the broadcast queue cannot take more
var ErrHubFull = errors.New("websocket hub broadcast queue full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub keeps live WebSocket clients and pushes each notification to the
// clients subscribed to its channel.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan domain.Notification
	register   chan *Client
	unregister chan *Client
	replies    chan reply
	done       chan struct{}
	logger     logging.Logger
	mutex      sync.RWMutex
}

type reply struct {
	client  *Client
	payload []byte
}

// Client is one WebSocket connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   string
	allow    func(channel string) bool
	mu       sync.Mutex
	channels []string
}

// SubscriptionMessage lets a connected client change its channels
type SubscriptionMessage struct {
	Action   string   `json:"action"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan domain.Notification, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan reply, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Name() string { return "websocket" }

// Run is the hub's main loop. It returns when ctx is done and closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logging.Fields{
				"client_count": count,
				"channels":     client.Channels(),
				"user_id":      client.userID,
			}).Info("Client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logging.Fields{
				"client_count": count,
			}).Info("Client disconnected")

		case n := <-h.broadcast:
			h.broadcastNotification(n)

		case r := <-h.replies:
			h.mutex.Lock()
			if h.clients[r.client] {
				select {
				case r.client.send <- r.payload:
				default:
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Notify queues n for broadcast without blocking
func (h *Hub) Notify(_ context.Context, n domain.Notification) error {
	select {
	case h.broadcast <- n:
		return nil
	default:
		h.logger.WithField("channel", n.Channel).Warn("Broadcast channel full, dropping message")
		return ErrHubFull
	}
}

func (h *Hub) broadcastNotification(n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal broadcast message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if !client.subscribed(n.Channel) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Stats returns the client count and subscriptions per channel
func (h *Hub) Stats() map[string]any {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	channelStats := make(map[string]int)
	for client := range h.clients {
		for _, channel := range client.Channels() {
			channelStats[channel]++
		}
	}

	return map[string]any{
		"total_clients":         len(h.clients),
		"channel_subscriptions": channelStats,
	}
}

// ServeWS upgrades the request and registers a client for userID on the
// given channels. allow gates later subscribe requests from the client;
// the initial channels must already be authorized by the caller.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string, channels []string, allow func(string) bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		allow:    allow,
		channels: slices.Clone(channels),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Channels returns a copy of the client's subscriptions
func (c *Client) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.channels)
}

func (c *Client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.channels, channel)
}

// readPump handles subscription changes and keeps the read deadline alive
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Error("WebSocket connection error")
			}
			return
		}

		var sub SubscriptionMessage
		if err := json.Unmarshal(message, &sub); err != nil {
			c.hub.logger.WithError(err).Warn("Invalid subscription message")
			continue
		}
		c.handleSubscription(sub)
	}
}

// writePump writes queued notifications and pings the peer
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleSubscription(msg SubscriptionMessage) {
	c.mu.Lock()
	var denied []string
	switch msg.Action {
	case "subscribe":
		for _, ch := range msg.Channels {
			if c.allow != nil && !c.allow(ch) {
				denied = append(denied, ch)
				continue
			}
			if !slices.Contains(c.channels, ch) {
				c.channels = append(c.channels, ch)
			}
		}
	case "unsubscribe":
		c.channels = slices.DeleteFunc(c.channels, func(ch string) bool {
			return slices.Contains(msg.Channels, ch)
		})
	default:
		c.mu.Unlock()
		c.hub.logger.WithField("action", msg.Action).Warn("Unknown subscription action")
		return
	}
	current := slices.Clone(c.channels)
	c.mu.Unlock()

	c.hub.logger.WithFields(logging.Fields{
		"action":   msg.Action,
		"channels": msg.Channels,
		"denied":   denied,
		"user_id":  c.userID,
	}).Info("Client subscription changed")

	payload, err := json.Marshal(map[string]any{
		"type":     "subscription_confirmed",
		"channels": current,
		"denied":   denied,
	})
	if err != nil {
		return
	}
	// the hub owns c.send, so confirmations go through its loop
	select {
	case c.hub.replies <- reply{client: c, payload: payload}:
	case <-c.hub.done:
	}
}
