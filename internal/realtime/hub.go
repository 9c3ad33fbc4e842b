// Package realtime pushes newly stored channel messages to websocket subscribers.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"chatlite/internal/domain"
	"chatlite/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events may queue for one subscriber before it
	// is dropped as too slow.
	sendBuffer = 64
)

type event struct {
	Event   string          `json:"event"`
	Message *domain.Message `json:"message,omitempty"`
}

// subscriber owns one connection. Only its writer goroutine writes to conn.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	origins  map[string]bool

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub accepts same-origin upgrades plus any origin listed in
// allowedOrigins (scheme://host[:port]).
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger:  logger,
		origins: make(map[string]bool, len(allowedOrigins)),
		subs:    make(map[string]map[*subscriber]struct{}),
	}
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			h.origins[strings.ToLower(o)] = true
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.origins[strings.ToLower(origin)] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Serve upgrades the request and streams messages for channelID until the
// client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, channelID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err, "channel_id", channelID)
		return
	}
	defer conn.Close()

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	connected, _ := json.Marshal(event{Event: "connected"})
	sub.send <- connected

	h.add(channelID, sub)
	defer h.remove(channelID, sub)
	go h.writeLoop(channelID, sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(channelID string, sub *subscriber) {
	for payload := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("drop realtime subscriber", "err", err, "channel_id", channelID)
			_ = sub.conn.Close()
			return
		}
	}
	_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Publish queues msg for every subscriber of channelID without blocking on
// the network. A subscriber whose queue is full is disconnected.
func (h *Hub) Publish(channelID string, msg domain.Message) {
	payload, err := json.Marshal(event{Event: "message", Message: &msg})
	if err != nil {
		h.logger.Error("encode realtime event", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[channelID] {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("realtime subscriber too slow", "channel_id", channelID)
			h.removeLocked(channelID, sub)
			_ = sub.conn.Close()
		}
	}
}

// Subscribers returns the number of live connections on channelID.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[channelID])
}

func (h *Hub) add(channelID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[channelID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[channelID] = set
	}
	set[sub] = struct{}{}
	metrics.SubscriberAdded()
}

func (h *Hub) remove(channelID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(channelID, sub)
}

// removeLocked closes sub.send exactly once, which stops its writer.
func (h *Hub) removeLocked(channelID string, sub *subscriber) {
	set := h.subs[channelID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.send)
	metrics.SubscriberRemoved()
	if len(set) == 0 {
		delete(h.subs, channelID)
	}
}
