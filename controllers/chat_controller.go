package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"socialspace-api/logger"
	"socialspace-api/middleware"
	"socialspace-api/models"
	"socialspace-api/services"
	"socialspace-api/utils"
)

func messageResponse(m *models.Message) models.MessageResponse {
	return m.ToResponse(models.MessageUser{
		ID:       m.SenderID,
		Username: m.Sender.Username,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type ChatController struct {
	chats     *services.ChatSession
	hub       *services.Hub
	jwtSecret string
}

func NewChatController(chats *services.ChatSession, hub *services.Hub, jwtSecret string) *ChatController {
	return &ChatController{chats: chats, hub: hub, jwtSecret: jwtSecret}
}

func (cc *ChatController) GetChats(c *gin.Context) {
	userID := c.GetString("user_id")

	chats, err := cc.chats.ListChats(userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (cc *ChatController) StartChat(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("user_id")

	chat, err := cc.chats.GetOrCreateDirectChat(userID, targetID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

func (cc *ChatController) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID, ok := parseID(c, "chat_id")
	if !ok {
		return
	}
	page, limit := pagination(c)

	messages, err := cc.chats.ListMessages(chatID, userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (cc *ChatController) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID, ok := parseID(c, "chat_id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Text is required")
		return
	}

	message, err := cc.chats.SendMessage(chatID, userID, req.Text)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendCreated(c, "Message sent", gin.H{"message": messageResponse(message)})
}

func (cc *ChatController) MarkChatRead(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID, ok := parseID(c, "chat_id")
	if !ok {
		return
	}

	updated, err := cc.chats.MarkChatRead(chatID, userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Chat marked as read", gin.H{"updated": updated})
}

func (cc *ChatController) EditMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	messageID, ok := parseID(c, "message_id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Text is required")
		return
	}

	message, err := cc.chats.EditMessage(messageID, userID, req.Text)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Message updated", gin.H{"message": messageResponse(message)})
}

func (cc *ChatController) DeleteMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	messageID, ok := parseID(c, "message_id")
	if !ok {
		return
	}

	if err := cc.chats.DeleteMessage(messageID, userID); err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Message deleted", nil)
}

// Connect upgrades the request to a websocket and attaches the client to
// the chat's broadcast group. Authentication uses the token query parameter
// because browsers cannot set headers on websocket handshakes. The upgrade
// always happens first so the close code reaches the client.
func (cc *ChatController) Connect(c *gin.Context) {
	chatID, ok := parseID(c, "chat_id")
	if !ok {
		return
	}

	conn, upgradeErr := upgrader.Upgrade(c.Writer, c.Request, nil)
	if upgradeErr != nil {
		logger.Get().Warn("websocket upgrade failed", zap.Error(upgradeErr))
		return
	}

	userID, err := middleware.ParseToken(c.Query("token"), cc.jwtSecret)
	if err != nil {
		closeWith(conn, 4001, "unauthenticated")
		return
	}

	member, err := cc.chats.IsParticipant(chatID, userID)
	if err != nil || !member {
		closeWith(conn, 4003, "not a participant")
		return
	}

	services.NewClient(cc.hub, cc.chats, conn, userID, chatID).Run()
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}
