package review

import (
	"sync"

	"github.com/gorilla/websocket"

	"crmcore/internal/domain"
)

// Hub pushes queue changes to connected reviewer dashboards.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[userID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[userID] = conn
}

// Unregister removes conn for userID. The conn argument keeps a stale read
// goroutine from tearing down a connection that replaced its own: after a
// reconnect the old goroutine's deferred Unregister must be a no-op.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if cur, exists := h.connections[userID]; exists && cur == conn {
		_ = cur.Close()
		delete(h.connections, userID)
	}
}

// QueueChanged implements Notifier: every connected reviewer gets the
// changed request.
func (h *Hub) QueueChanged(req *domain.ConversionRequest) {
	h.mutex.RLock()
	conns := make(map[int64]*websocket.Conn, len(h.connections))
	for id, c := range h.connections {
		conns[id] = c
	}
	h.mutex.RUnlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(req); err != nil {
			h.Unregister(id, conn)
		}
	}
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, id)
	}
}
