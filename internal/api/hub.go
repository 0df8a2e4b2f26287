package api

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "mindwave:chat:"

type Client struct {
	SessionID string
	Send      chan []byte
}

type envelope struct {
	sessionID string
	payload   []byte
}

// Hub fans chat messages out to the WebSocket clients of a session. All
// client bookkeeping happens on the Run goroutine. With Redis configured,
// broadcasts go through pub/sub so every instance sees them.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope

	rdb    *redis.Client
	viaPub atomic.Bool
	logger *log.Logger
	ready  chan struct{}
	done   chan struct{}
}

func NewHub(rdb *redis.Client, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope),
		rdb:        rdb,
		logger:     logger,
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Ready is closed once the hub accepts broadcasts.
func (h *Hub) Ready() <-chan struct{} { return h.ready }

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribe(ctx)
	} else {
		close(h.ready)
	}

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for c := range clients {
					close(c.Send)
				}
			}
			h.clients = nil
			return
		case c := <-h.register:
			if h.clients[c.SessionID] == nil {
				h.clients[c.SessionID] = make(map[*Client]struct{})
			}
			h.clients[c.SessionID][c] = struct{}{}
		case c := <-h.unregister:
			if clients, ok := h.clients[c.SessionID]; ok {
				if _, ok := clients[c]; ok {
					delete(clients, c)
					close(c.Send)
				}
				if len(clients) == 0 {
					delete(h.clients, c.SessionID)
				}
			}
		case env := <-h.broadcast:
			for c := range h.clients[env.sessionID] {
				select {
				case c.Send <- env.payload:
				default:
					// slow reader
					close(c.Send)
					delete(h.clients[env.sessionID], c)
				}
			}
		}
	}
}

// Register adds a client for sessionID. After the hub stops, the returned
// client's Send channel is already closed.
func (h *Hub) Register(sessionID string) *Client {
	c := &Client{SessionID: sessionID, Send: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
	return c
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(ctx context.Context, sessionID string, payload []byte) {
	if h.viaPub.Load() {
		err := h.rdb.Publish(ctx, channelPrefix+sessionID, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("redis publish failed, delivering locally", "session", sessionID, "err", err)
	}
	h.deliver(envelope{sessionID: sessionID, payload: payload})
}

func (h *Hub) deliver(env envelope) {
	select {
	case h.broadcast <- env:
	case <-h.done:
	}
}

func (h *Hub) subscribe(ctx context.Context) {
	pubsub := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("redis subscribe failed, broadcasting locally", "err", err)
		close(h.ready)
		return
	}
	h.viaPub.Store(true)
	close(h.ready)
	h.relay(ctx, pubsub.Channel())
}

// relay delivers published messages until ch closes or ctx is done.
// Afterwards broadcasts are delivered locally again.
func (h *Hub) relay(ctx context.Context, ch <-chan *redis.Message) {
	defer h.viaPub.Store(false)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				h.logger.Warn("redis subscription closed, broadcasting locally")
				return
			}
			h.deliver(envelope{
				sessionID: strings.TrimPrefix(msg.Channel, channelPrefix),
				payload:   []byte(msg.Payload),
			})
		}
	}
}
