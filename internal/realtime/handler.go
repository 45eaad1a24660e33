package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

const (
	EventSetUsername    = "set_username"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"

	maxMessageSize  = 15 << 20
	lastSeenTimeout = 5 * time.Second
)

// LastSeenWriter persists the time a user was last connected.
type LastSeenWriter interface {
	UpdateLastSeen(ctx context.Context, username string, at time.Time) error
}

// Envelope is the frame exchanged over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type messageTarget struct {
	To string `json:"to"`
}

// Handler upgrades requests to websocket connections and relays messages
// between registered users.
type Handler struct {
	hub      *Hub
	lastSeen LastSeenWriter
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewHandler creates a Handler. lastSeen may be nil.
func NewHandler(hub *Hub, lastSeen LastSeenWriter) *Handler {
	return &Handler{
		hub:      hub,
		lastSeen: lastSeen,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

// ServeHTTP godoc
// @Summary Realtime messaging socket
// @Description Websocket carrying set_username, send_message and receive_message events
// @Tags realtime
// @Success 101
// @Router /socket [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn)
	go c.writePump()

	h.readLoop(c)
}

func (h *Handler) readLoop(c *Client) {
	defer h.disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Log.Debugw("malformed websocket frame", "error", err)
			continue
		}

		switch env.Event {
		case EventSetUsername:
			h.setUsername(c, env.Data)
		case EventSendMessage:
			h.sendMessage(c, env.Data)
		default:
			logger.Log.Debugw("unknown websocket event", "event", env.Event)
		}
	}
}

func (h *Handler) setUsername(c *Client, data json.RawMessage) {
	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		logger.Log.Debugw("invalid set_username payload", "error", err)
		return
	}
	username = normalizeUsername(username)
	if username == "" {
		return
	}
	h.hub.Register(username, c)
}

// sendMessage relays data to the client bound to its "to" field.
// Messages to unknown users or to the sender itself are dropped.
func (h *Handler) sendMessage(sender *Client, data json.RawMessage) {
	var target messageTarget
	if err := json.Unmarshal(data, &target); err != nil {
		return
	}
	to := normalizeUsername(target.To)
	if to == "" {
		return
	}

	peer, ok := h.hub.Lookup(to)
	if !ok || peer == sender {
		return
	}

	frame, err := json.Marshal(Envelope{Event: EventReceiveMessage, Data: data})
	if err != nil {
		return
	}
	if !peer.Send(frame) {
		logger.Log.Warnw("message dropped", "to", to)
	}
}

// normalizeUsername matches the form usernames are stored in.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (h *Handler) disconnect(c *Client) {
	c.close()

	username, ok := h.hub.Unregister(c)
	if !ok || h.lastSeen == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lastSeenTimeout)
	defer cancel()

	if err := h.lastSeen.UpdateLastSeen(ctx, username, h.now()); err != nil {
		logger.Log.Errorw("failed to update last seen", "username", username, "error", err)
	}
}
