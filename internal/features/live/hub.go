package live

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// RefreshEvent tells connected clients that a cached entry was rebuilt
// in the background and a re-render would pick up fresher data
type RefreshEvent struct {
	Key         string    `json:"key"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Hub fans cache refresh events out to websocket subscribers. It
// implements cache.RefreshListener.
type Hub struct {
	Log *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Log:   log,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// CacheRefreshed broadcasts the event to every connected client.
// A failed write drops that client; the rest still get the event.
func (h *Hub) CacheRefreshed(key string, at time.Time) {
	event := RefreshEvent{Key: key, RefreshedAt: at}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.Log.Debug("live client write failed, dropping", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Subscribers reports the current connection count
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
