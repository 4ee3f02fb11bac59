package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quizclash/models"
)

// PresenceHandler is told when a client attaches to or detaches from a room
// so the connection flag in the room record can follow the transport.
type PresenceHandler interface {
	HandleConnect(roomID, userID string)
	HandleDisconnect(roomID, userID string)
}

// Hub fans state-change events out to subscribed websocket clients. It
// implements Notifier; no game logic lives here.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
	presence   PresenceHandler
	log        zerolog.Logger
}

// Client is one websocket subscription. roomID is empty for lobby
// connections that only receive matchmaking events.
type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
	roomID string
	userID string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// SetPresence wires the room service in after construction; the hub and the
// services reference each other.
func (h *Hub) SetPresence(p PresenceHandler) {
	h.presence = p
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug().Str("room_id", client.roomID).Str("user_id", client.userID).Msg("client registered")
			if h.presence != nil && client.roomID != "" {
				go h.presence.HandleConnect(client.roomID, client.userID)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			if ok {
				h.log.Debug().Str("room_id", client.roomID).Str("user_id", client.userID).Msg("client unregistered")
				if h.presence != nil && client.roomID != "" {
					go h.presence.HandleDisconnect(client.roomID, client.userID)
				}
			}
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, roomID, userID string) *Client {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 256),
		roomID: roomID,
		userID: userID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) broadcastToRoom(roomID, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("type", messageType).Msg("failed to marshal event")
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.roomID != roomID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) sendToUser(userID, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("type", messageType).Msg("failed to marshal event")
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Notifier implementation. Payload field names are the client wire contract.

func (h *Hub) RoomCreated(room *models.GameRoom) {
	h.broadcastToRoom(room.ID, "room_created", map[string]interface{}{"room_id": room.ID, "game_type": room.GameType})
}

func (h *Hub) PlayerJoined(roomID string, player *models.GamePlayer) {
	h.broadcastToRoom(roomID, "player_joined", map[string]interface{}{"player": player})
}

func (h *Hub) PlayerLeft(roomID, userID string) {
	h.broadcastToRoom(roomID, "player_left", map[string]interface{}{"user_id": userID})
}

func (h *Hub) PlayerReadyChanged(roomID, userID string, ready bool) {
	h.broadcastToRoom(roomID, "player_ready_changed", map[string]interface{}{"user_id": userID, "ready": ready})
}

func (h *Hub) PlayerDisconnected(roomID, userID string) {
	h.broadcastToRoom(roomID, "player_disconnected", map[string]interface{}{"user_id": userID})
}

func (h *Hub) PlayerReconnected(roomID, userID string) {
	h.broadcastToRoom(roomID, "player_reconnected", map[string]interface{}{"user_id": userID})
}

func (h *Hub) GameStarting(room *models.GameRoom) {
	h.broadcastToRoom(room.ID, "game_starting", map[string]interface{}{
		"room_id":      room.ID,
		"total_rounds": room.TotalRounds,
		"started_at":   room.StartedAt,
	})
}

func (h *Hub) RoundStarted(roomID string, round int, question *models.GameQuestion, endsAt time.Time) {
	h.broadcastToRoom(roomID, "round_started", map[string]interface{}{
		"round":         round,
		"question":      question,
		"round_ends_at": endsAt.UnixMilli(),
	})
}

func (h *Hub) PlayerAnswered(roomID, userID string) {
	// correctness is not revealed until the round ends
	h.broadcastToRoom(roomID, "player_answered", map[string]interface{}{"user_id": userID})
}

func (h *Hub) RoundEnded(roomID string, result *models.RoundResult) {
	h.broadcastToRoom(roomID, "round_ended", map[string]interface{}{"result": result})
}

func (h *Hub) GameEnded(roomID string, result *models.GameResult) {
	h.broadcastToRoom(roomID, "game_ended", map[string]interface{}{"result": result})
}

func (h *Hub) MatchFound(roomID string, players []models.MatchmakingEntry) {
	for _, p := range players {
		h.sendToUser(p.UserID, "match_found", map[string]interface{}{"room_id": roomID, "players": players})
	}
}

func (h *Hub) MatchmakingUpdate(userID string, position int) {
	h.sendToUser(userID, "matchmaking_update", map[string]interface{}{"position": position})
}

func (h *Hub) Error(roomID, userID, code, message string) {
	payload := map[string]interface{}{"code": code, "message": message}
	if roomID != "" {
		h.broadcastToRoom(roomID, "error", payload)
		return
	}
	h.sendToUser(userID, "error", payload)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Str("user_id", c.userID).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// Game actions travel over HTTP; the socket only carries server events and
// keepalives.
func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		select {
		case c.send <- data:
		default:
		}
	default:
		c.hub.log.Debug().Str("type", msg.Type).Str("user_id", c.userID).Msg("ignoring client message")
	}
}
