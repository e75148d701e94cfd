package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"socialspace-api/logger"
	"socialspace-api/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-connection outbound buffer. A client that falls this far behind
	// is dropped from its group rather than blocking the broadcast.
	sendBufferSize = 64
)

// WSEvent is a server-to-client envelope on the chat socket.
type WSEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// WSError is an in-band protocol error; it never closes the connection.
type WSError struct {
	Error string `json:"error"`
}

type messagesReadData struct {
	ChatID   uint   `json:"chat_id"`
	ReaderID string `json:"reader_id"`
}

func NewMessageEvent(m *models.Message, sender models.MessageUser) WSEvent {
	return WSEvent{Event: "new_message", Data: m.ToResponse(sender)}
}

func MessagesReadEvent(chatID uint, readerID string) WSEvent {
	return WSEvent{Event: "messages_read", Data: messagesReadData{ChatID: chatID, ReaderID: readerID}}
}

// clientAction is what the peer may send us.
type clientAction struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

// Hub tracks live connections grouped by chat id and fans broadcasts out to
// a group. Delivery is best-effort: a connection that is gone or too slow is
// dropped from the group, never treated as an error.
type Hub struct {
	mu     sync.RWMutex
	groups map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{groups: make(map[uint]map[*Client]bool)}
}

func (h *Hub) Join(chatID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[chatID]
	if !ok {
		group = make(map[*Client]bool)
		h.groups[chatID] = group
	}
	group[c] = true
}

func (h *Hub) Leave(chatID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(chatID, c)
}

// removeLocked drops the client from the group and signals its write pump
// through the done channel. The send channel stays open: the read side may
// still be running and queueing protocol errors, and only the client owns
// its channel lifecycle.
func (h *Hub) removeLocked(chatID uint, c *Client) {
	group, ok := h.groups[chatID]
	if !ok {
		return
	}
	if _, member := group[c]; !member {
		return
	}
	delete(group, c)
	close(c.done)
	if len(group) == 0 {
		delete(h.groups, chatID)
	}
}

// GroupSize reports how many connections are subscribed to a chat.
func (h *Hub) GroupSize(chatID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[chatID])
}

// Broadcast delivers payload to every connection in the chat's group except
// those owned by excludeUserID. Events are queued on each client's own
// channel, so every connection observes broadcasts in the order they were
// made.
func (h *Hub) Broadcast(chatID uint, payload any, excludeUserID string) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Error("failed to marshal broadcast payload", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.groups[chatID] {
		if excludeUserID != "" && client.userID == excludeUserID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.removeLocked(chatID, client)
		}
	}
}

// Client binds one websocket connection to one authenticated user and one
// chat group.
type Client struct {
	hub    *Hub
	chats  *ChatSession
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID string
	chatID uint
}

func NewClient(hub *Hub, chats *ChatSession, conn *websocket.Conn, userID string, chatID uint) *Client {
	return &Client{
		hub:    hub,
		chats:  chats,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		userID: userID,
		chatID: chatID,
	}
}

// Run joins the chat group and pumps the connection until it closes. It
// blocks until the read side ends; leaving the group tears the write side
// down with it.
func (c *Client) Run() {
	c.hub.Join(c.chatID, c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c.chatID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var action clientAction
		if err := json.Unmarshal(raw, &action); err != nil {
			c.sendError("invalid_json")
			continue
		}

		switch action.Action {
		case "send_message":
			c.handleSendMessage(action.Text)
		default:
			c.sendError("invalid_json")
		}
	}
}

func (c *Client) handleSendMessage(text string) {
	if _, err := c.chats.SendMessage(c.chatID, c.userID, text); err != nil {
		switch err {
		case ErrEmptyContent:
			c.sendError("empty_text")
		default:
			logger.Get().Error("failed to send chat message",
				zap.Uint("chat_id", c.chatID),
				zap.String("user_id", c.userID),
				zap.Error(err))
			c.sendError("internal_error")
		}
	}
}

func (c *Client) sendError(code string) {
	data, err := json.Marshal(WSError{Error: code})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			// The hub removed us from the group.
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
