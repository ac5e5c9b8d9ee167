package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Hub pushes state-change notifications to connected browsers. Clients
// refetch the snapshot on notification; the hub itself carries no state.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The binder runs on the office LAN behind no proxy.
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
	}
}

type stateNotice struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyStateChanged broadcasts a state-change notice to every client.
// Dead connections are dropped on write failure.
func (h *Hub) NotifyStateChanged() {
	notice := stateNotice{Type: "state", Timestamp: time.Now().UnixMilli()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.conns {
		if err := ws.WriteJSON(notice); err != nil {
			ws.Close()
			delete(h.conns, ws)
		}
	}
}

// HandleWebSocket upgrades the connection and parks it in the hub until
// the client goes away.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.conns[ws] = true
	h.mu.Unlock()

	fmt.Println("[WebSocket] Client connected")

	defer func() {
		h.mu.Lock()
		delete(h.conns, ws)
		h.mu.Unlock()
		ws.Close()
		fmt.Println("[WebSocket] Client disconnected")
	}()

	// Drain the read side; clients only listen but pings still arrive.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			return nil
		}
	}
}
