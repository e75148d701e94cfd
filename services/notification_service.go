package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"socialspace-api/models"
	"socialspace-api/repositories"
)

// NotificationService owns the Notification entity. It consumes domain
// events from the relationship and chat services and exposes the read side
// of the inbox. It holds only a NotificationStore, so it cannot touch graph
// or chat state.
type NotificationService struct {
	store repositories.NotificationStore
}

func NewNotificationService(store repositories.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Consume maps a domain event to a notification, writing through the given
// store so producers can pass a transaction-bound store and keep the
// notification inside their own atomic unit.
func (s *NotificationService) Consume(store repositories.NotificationStore, ev Event) error {
	var err error
	switch e := ev.(type) {
	case FriendRequestCreated:
		_, err = s.notify(store, e.Request.ReceiverID, e.Request.SenderID,
			models.NotificationKindFriendRequest, models.FriendRequestRef(e.Request.ID))
	case FriendRequestAccepted:
		_, err = s.notify(store, e.Request.SenderID, e.Request.ReceiverID,
			models.NotificationKindFriendAccept, models.FriendRequestRef(e.Request.ID))
	case FriendRequestRejected:
		// Rejections stay silent; the graph cleanup is the only side effect.
	case FollowCreated:
		_, err = s.notify(store, e.Follow.FollowingID, e.Follow.FollowerID,
			models.NotificationKindFollow, nil)
	case MessageSent:
		_, err = s.notify(store, e.RecipientID, e.Message.SenderID,
			models.NotificationKindMessage, models.MessageRef(e.Message.ID))
	default:
		return fmt.Errorf("unknown event %q", ev.eventName())
	}
	return err
}

// Notify performs the dedup upsert against the service's own store.
func (s *NotificationService) Notify(recipientID, senderID string, kind models.NotificationKind, subject *models.SubjectRef) (*models.Notification, error) {
	return s.notify(s.store, recipientID, senderID, kind, subject)
}

func (s *NotificationService) notify(store repositories.NotificationStore, recipientID, senderID string, kind models.NotificationKind, subject *models.SubjectRef) (*models.Notification, error) {
	if recipientID == senderID {
		return nil, nil
	}

	n := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Kind:        kind,
	}
	if subject != nil {
		n.SubjectType = subject.Type
		n.SubjectID = subject.ID
	}

	stored, _, err := store.GetOrCreate(&n)
	return stored, err
}

func (s *NotificationService) MarkRead(notificationID, actorID string) (*models.Notification, error) {
	n, err := s.store.Get(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.RecipientID != actorID {
		return nil, ErrForbidden
	}

	if !n.IsRead {
		if err := s.store.MarkRead(n); err != nil {
			return nil, err
		}
		n.IsRead = true
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(recipientID string) (int64, error) {
	return s.store.MarkAllRead(recipientID)
}

func (s *NotificationService) List(recipientID string, kind models.NotificationKind, page, limit int) ([]models.NotificationResponse, int64, error) {
	offset := (page - 1) * limit
	notifications, total, err := s.store.List(recipientID, kind, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}
	return responses, total, nil
}

func (s *NotificationService) Stats(recipientID string) (*models.NotificationStats, error) {
	return s.store.Stats(recipientID)
}
