// Package stream broadcasts simulation frames to websocket clients
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/parameter"
)

type client struct {
	send chan []byte
}

// Hub fans encoded frames out to connected clients
// A client whose backlog is full misses frames instead of stalling the publisher
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	buffer       int
	writeTimeout time.Duration
	origins      []string
	logger       *slog.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithClientBuffer sets the per-client frame backlog
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithOriginPatterns admits cross-origin spectator pages whose host matches one of patterns
// Patterns use path.Match syntax, e.g. "localhost:*" or "*.example.com"; same-origin requests are always accepted
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) { h.origins = append(h.origins, patterns...) }
}

func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:      make(map[*client]struct{}),
		buffer:       parameter.StreamClientBuffer,
		writeTimeout: parameter.StreamWriteTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and streams frames until the client or hub goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to accept", "err", err)
		return
	}

	c := &client{send: make(chan []byte, h.buffer)}
	if !h.add(c) {
		conn.Close(websocket.StatusGoingAway, "stream closed")
		return
	}
	defer h.remove(c)

	// Clients only listen; CloseRead handles control frames and cancels ctx on disconnect
	ctx := conn.CloseRead(r.Context())
	h.logger.DebugContext(ctx, "stream client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.DebugContext(ctx, "stream client write failed", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Publish encodes f once and queues it for every client
func (h *Hub) Publish(f *engine.Frame) error {
	if f == nil {
		return nil
	}
	msg, err := Encode(f)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast queues msg for every client without blocking
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published.Add(1)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns frames skipped for slow clients, counted per client
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Published returns the number of broadcasts
func (h *Hub) Published() uint64 { return h.published.Load() }
