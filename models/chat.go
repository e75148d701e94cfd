package models

import "time"

// Chat is a direct-message conversation between exactly two users. Like
// Friendship, the pair is stored lower id first with a unique index, so at
// most one chat can exist per unordered pair.
type Chat struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserLowID     string    `json:"user_low_id" gorm:"not null;size:191;uniqueIndex:uk_chats_pair,priority:1"`
	UserHighID    string    `json:"user_high_id" gorm:"not null;size:191;uniqueIndex:uk_chats_pair,priority:2"`
	LastMessageID *uint     `json:"last_message_id"`
	CreatedAt     time.Time `json:"created_at"`

	UserLow     User     `json:"user_low" gorm:"foreignKey:UserLowID"`
	UserHigh    User     `json:"user_high" gorm:"foreignKey:UserHighID"`
	LastMessage *Message `json:"last_message,omitempty" gorm:"foreignKey:LastMessageID"`
}

func (c *Chat) HasParticipant(userID string) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID string) string {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

func (c *Chat) ParticipantIDs() []string {
	return []string{c.UserLowID, c.UserHighID}
}

type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index:idx_messages_chat_read,priority:1"`
	SenderID  string    `json:"sender_id" gorm:"not null;size:191"`
	Text      string    `json:"text" gorm:"not null;size:2000"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index:idx_messages_chat_read,priority:2"`
	IsEdited  bool      `json:"is_edited" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender User `json:"sender" gorm:"foreignKey:SenderID"`
}

// MessageResponse is the wire rendering of a message, shared by the REST
// surface and the websocket new_message event.
type MessageResponse struct {
	ID        uint        `json:"id"`
	Chat      uint        `json:"chat"`
	Text      string      `json:"text"`
	Sender    MessageUser `json:"sender"`
	CreatedAt time.Time   `json:"created_at"`
	IsRead    bool        `json:"is_read"`
	IsEdited  bool        `json:"is_edited"`
}

type MessageUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (m *Message) ToResponse(sender MessageUser) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Chat:      m.ChatID,
		Text:      m.Text,
		Sender:    sender,
		CreatedAt: m.CreatedAt,
		IsRead:    m.IsRead,
		IsEdited:  m.IsEdited,
	}
}

// ChatResponse is the API rendering of a chat from one participant's side.
type ChatResponse struct {
	ID          uint             `json:"id"`
	Participant PublicUser       `json:"participant"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
	CreatedAt   time.Time        `json:"created_at"`
}
