package realtime

import "sync"

// Hub maps usernames to their live connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register binds username to c. The latest registration for a username wins,
// and a client that was bound under another name loses that binding.
func (h *Hub) Register(username string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.username != "" && c.username != username {
		if cur, ok := h.clients[c.username]; ok && cur == c {
			delete(h.clients, c.username)
		}
	}
	if prev, ok := h.clients[username]; ok && prev != c {
		prev.username = ""
	}

	h.clients[username] = c
	c.username = username
}

// Lookup returns the client bound to username.
func (h *Hub) Lookup(username string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[username]
	return c, ok
}

// Unregister drops the binding held by c and returns the username it was bound to.
// Nothing is removed when the name has since been claimed by another client.
func (h *Hub) Unregister(c *Client) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	username := c.username
	if username == "" {
		return "", false
	}
	c.username = ""

	if cur, ok := h.clients[username]; ok && cur == c {
		delete(h.clients, username)
		return username, true
	}
	return "", false
}

// Len returns the number of bound usernames.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
