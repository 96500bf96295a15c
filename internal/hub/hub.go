// Package hub fans persisted chat messages out to WebSocket subscribers.
// Subscribers attach to a topic ("global", "group:<id>" or "dm:<conversation
// id>"); every committed message is broadcast to its topic after the store
// write.
package hub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

const GlobalTopic = "global"

func GroupTopic(groupID string) string { return "group:" + groupID }

func ConversationTopic(convID string) string { return "dm:" + convID }

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*websocket.Conn]struct{}
	connMu map[*websocket.Conn]*sync.Mutex // per-connection write locks
	wg     sync.WaitGroup
	logger *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*websocket.Conn]struct{}),
		connMu: make(map[*websocket.Conn]*sync.Mutex),
		logger: logger,
	}
}

// Broadcast writes v as JSON to every subscriber of the topic. Writes to a
// single connection are serialized through its per-connection lock; failed
// writes drop the subscriber so a dead client never blocks the send path.
func (h *Hub) Broadcast(topic string, v any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.topics[topic]))
	for conn := range h.topics[topic] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.mu.RLock()
		mu := h.connMu[conn]
		h.mu.RUnlock()
		if mu == nil {
			continue
		}
		mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(v)
		mu.Unlock()
		if err != nil {
			h.logger.Debug("Dropping websocket subscriber",
				zap.Error(err),
				zap.String("topic", topic))
			h.remove(topic, conn)
			_ = conn.Close()
		}
	}
}

func (h *Hub) add(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*websocket.Conn]struct{})
		h.topics[topic] = subs
	}
	subs[conn] = struct{}{}
	h.connMu[conn] = &sync.Mutex{}
}

func (h *Hub) remove(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, exists := h.topics[topic]; exists {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.connMu, conn)
}

// HandleWS upgrades the request and subscribes the connection to the topic
// named by the "topic" query parameter until the peer disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "topic required", http.StatusBadRequest)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.add(topic, conn)
	h.wg.Add(1)
	go func() {
		defer func() {
			h.remove(topic, conn)
			_ = conn.Close()
			h.wg.Done()
		}()
		for {
			// Subscribers are read-only; drain control frames until close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// CloseAll force-closes every subscriber (used during shutdown). The close
// frame goes out under the same per-connection lock Broadcast uses, so an
// in-flight broadcast never interleaves with it.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0)
	mus := make([]*sync.Mutex, 0)
	for _, subs := range h.topics {
		for conn := range subs {
			conns = append(conns, conn)
			mus = append(mus, h.connMu[conn])
		}
	}
	h.topics = make(map[string]map[*websocket.Conn]struct{})
	h.connMu = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for i, conn := range conns {
		mu := mus[i]
		if mu == nil {
			continue
		}
		mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
		mu.Unlock()
		_ = conn.Close()
	}
}

// Wait blocks until all subscriber goroutines have finished.
func (h *Hub) Wait() {
	h.wg.Wait()
}
