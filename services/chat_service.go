package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"socialspace-api/models"
	"socialspace-api/repositories"
)

// Broadcaster fans an event out to the live connections of one chat,
// skipping connections owned by excludeUserID. The hub implements it; tests
// substitute a recorder.
type Broadcaster interface {
	Broadcast(chatID uint, payload any, excludeUserID string)
}

// ChatSession owns chats and messages: direct-message pairing, message
// persistence, the read cursor, and handing persisted messages to the hub.
// Broadcasts happen strictly after the owning transaction commits, so a
// delivered message is always durable.
type ChatSession struct {
	store      repositories.Store
	dispatcher *NotificationService
	hub        Broadcaster
}

func NewChatSession(store repositories.Store, dispatcher *NotificationService, hub Broadcaster) *ChatSession {
	return &ChatSession{store: store, dispatcher: dispatcher, hub: hub}
}

// GetOrCreateDirectChat returns the chat for the unordered pair, creating it
// on first contact. Concurrent calls for the same pair resolve to one row.
func (s *ChatSession) GetOrCreateDirectChat(userID, targetID string) (*models.Chat, error) {
	if userID == targetID {
		return nil, ErrSelfTarget
	}

	if _, err := s.store.Users().Get(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	chat, _, err := s.store.Chats().GetOrCreateDirectChat(userID, targetID)
	return chat, err
}

// SendMessage persists the message, advances the chat's last-message pointer
// and writes the recipient's notification in one transaction, then
// broadcasts the new_message event to the chat's group minus the sender.
func (s *ChatSession) SendMessage(chatID uint, senderID, text string) (*models.Message, error) {
	chat, err := s.loadChat(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyContent
	}

	sender, err := s.store.Users().Get(senderID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
	}

	err = s.store.Transaction(func(tx repositories.Store) error {
		if err := tx.Chats().CreateMessage(message); err != nil {
			return err
		}
		if err := tx.Chats().SetLastMessage(chatID, &message.ID); err != nil {
			return err
		}
		return s.dispatcher.Consume(tx.Notifications(), MessageSent{
			Message:     message,
			RecipientID: chat.OtherParticipant(senderID),
		})
	})
	if err != nil {
		return nil, err
	}

	message.Sender = *sender
	if s.hub != nil {
		s.hub.Broadcast(chatID, NewMessageEvent(message, models.MessageUser{
			ID:       senderID,
			Username: sender.Username,
		}), senderID)
	}
	return message, nil
}

// MarkChatRead flips the read flag on every message in the chat not authored
// by the reader and tells the other participant's connections about it.
func (s *ChatSession) MarkChatRead(chatID uint, readerID string) (int64, error) {
	chat, err := s.loadChat(chatID)
	if err != nil {
		return 0, err
	}
	if !chat.HasParticipant(readerID) {
		return 0, ErrForbidden
	}

	updated, err := s.store.Chats().MarkChatRead(chatID, readerID)
	if err != nil {
		return 0, err
	}

	if s.hub != nil {
		s.hub.Broadcast(chatID, MessagesReadEvent(chatID, readerID), readerID)
	}
	return updated, nil
}

// EditMessage replaces the text, sender only. Editing to the same text is a
// no-op and does not set the edited flag.
func (s *ChatSession) EditMessage(messageID uint, actorID, newText string) (*models.Message, error) {
	message, err := s.loadMessage(messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != actorID {
		return nil, ErrForbidden
	}

	newText = strings.TrimSpace(newText)
	if newText == "" {
		return nil, ErrEmptyContent
	}
	if message.Text == newText {
		return message, nil
	}

	message.Text = newText
	message.IsEdited = true
	if err := s.store.Chats().SaveMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage removes the message and recomputes the chat's last-message
// pointer from the newest remaining message, clearing it when none remain.
func (s *ChatSession) DeleteMessage(messageID uint, actorID string) error {
	message, err := s.loadMessage(messageID)
	if err != nil {
		return err
	}
	if message.SenderID != actorID {
		return ErrForbidden
	}

	return s.store.Transaction(func(tx repositories.Store) error {
		if err := tx.Chats().DeleteMessage(message); err != nil {
			return err
		}
		latest, err := tx.Chats().LatestMessageID(message.ChatID)
		if err != nil {
			return err
		}
		return tx.Chats().SetLastMessage(message.ChatID, latest)
	})
}

// IsParticipant reports whether userID may join the chat's group. Checked
// once, at connect time.
func (s *ChatSession) IsParticipant(chatID uint, userID string) (bool, error) {
	chat, err := s.loadChat(chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return chat.HasParticipant(userID), nil
}

func (s *ChatSession) ListChats(userID string) ([]models.ChatResponse, error) {
	chats, err := s.store.Chats().ListChatsForUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChatResponse, 0, len(chats))
	for i := range chats {
		chat := &chats[i]

		other := chat.UserHigh
		if chat.UserHighID == userID {
			other = chat.UserLow
		}

		unread, err := s.store.Chats().UnreadCount(chat.ID, userID)
		if err != nil {
			return nil, err
		}

		resp := models.ChatResponse{
			ID:          chat.ID,
			Participant: other.Public(),
			UnreadCount: unread,
			CreatedAt:   chat.CreatedAt,
		}
		if chat.LastMessage != nil {
			last := chat.LastMessage.ToResponse(models.MessageUser{
				ID:       chat.LastMessage.SenderID,
				Username: chat.LastMessage.Sender.Username,
			})
			resp.LastMessage = &last
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *ChatSession) ListMessages(chatID uint, userID string, page, limit int) ([]models.MessageResponse, error) {
	chat, err := s.loadChat(chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrForbidden
	}

	messages, err := s.store.Chats().ListMessages(chatID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		responses = append(responses, m.ToResponse(models.MessageUser{
			ID:       m.SenderID,
			Username: m.Sender.Username,
		}))
	}
	return responses, nil
}

func (s *ChatSession) loadChat(chatID uint) (*models.Chat, error) {
	chat, err := s.store.Chats().GetChat(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return chat, nil
}

func (s *ChatSession) loadMessage(messageID uint) (*models.Message, error) {
	message, err := s.store.Chats().GetMessage(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return message, nil
}
