package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"lobby-service/internal/models"
)

const roomKind = "activity"

// Hub maintains the live websocket rooms, one per activity. Delivery is
// "connected at time of send"; disconnected clients catch up through the
// message history endpoints.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to an activity room.
func (h *Hub) AddClient(activityID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[activityID]; !ok {
		h.rooms[activityID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[activityID][conn] = true
	if _, ok := h.connInfo[activityID]; !ok {
		h.connInfo[activityID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[activityID][conn] = info
}

// RemoveClient removes a websocket connection from an activity room.
func (h *Hub) RemoveClient(activityID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[activityID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, activityID)
		}
	}
	if infos, ok := h.connInfo[activityID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, activityID)
		}
	}
}

// BroadcastMessage sends a chat message to every client in the activity room.
func (h *Hub) BroadcastMessage(activityID int, msg models.Message) {
	h.mu.RLock()
	conns := h.rooms[activityID]
	h.mu.RUnlock()

	event := models.ChatEvent{Type: "message", Message: &msg}
	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(activityID, conn)
			h.publishError(activityID, conn, err)
		}
	}
}

func (h *Hub) publishError(activityID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(activityID, conn)
	if !ok {
		return
	}
	publishWSEvent(nil, "ws_error", activityID, info, err.Error())
}

func (h *Hub) getConnInfo(activityID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[activityID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
