package models

import "time"

type NotificationKind string

const (
	NotificationKindFriendRequest NotificationKind = "friend_request"
	NotificationKindFriendAccept  NotificationKind = "friend_accept"
	NotificationKindLike          NotificationKind = "like"
	NotificationKindComment       NotificationKind = "comment"
	NotificationKindFollow        NotificationKind = "follow"
	NotificationKindMessage       NotificationKind = "message"
)

// SubjectType tags which entity a notification points at. The set is closed:
// every kind that carries a subject maps to exactly one of these.
type SubjectType string

const (
	SubjectTypeFriendRequest SubjectType = "friend_request"
	SubjectTypeMessage       SubjectType = "message"
	SubjectTypePost          SubjectType = "post"
)

// SubjectRef is a typed reference to the entity that caused a notification.
type SubjectRef struct {
	Type SubjectType `json:"type"`
	ID   uint        `json:"id"`
}

func FriendRequestRef(id uint) *SubjectRef {
	return &SubjectRef{Type: SubjectTypeFriendRequest, ID: id}
}

func MessageRef(id uint) *SubjectRef {
	return &SubjectRef{Type: SubjectTypeMessage, ID: id}
}

func PostRef(id uint) *SubjectRef {
	return &SubjectRef{Type: SubjectTypePost, ID: id}
}

// Notification is deduplicated on the full (recipient, sender, kind, subject)
// tuple: producers may emit the same logical event more than once without
// creating a second row. Subjectless kinds store the empty string and zero id
// rather than NULL, keeping them inside the unique index: both MySQL and
// SQLite treat NULLs as distinct, which would void the backstop.
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;size:191"`
	RecipientID string           `json:"recipient_id" gorm:"not null;size:191;index:idx_notifications_recipient_read,priority:1;uniqueIndex:uk_notifications_tuple,priority:1"`
	SenderID    string           `json:"sender_id" gorm:"not null;size:191;uniqueIndex:uk_notifications_tuple,priority:2"`
	Kind        NotificationKind `json:"kind" gorm:"not null;size:30;uniqueIndex:uk_notifications_tuple,priority:3"`
	SubjectType SubjectType      `json:"subject_type" gorm:"not null;default:'';size:30;uniqueIndex:uk_notifications_tuple,priority:4"`
	SubjectID   uint             `json:"subject_id" gorm:"not null;default:0;uniqueIndex:uk_notifications_tuple,priority:5"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time        `json:"created_at"`

	Recipient User `json:"-" gorm:"foreignKey:RecipientID"`
	Sender    User `json:"sender" gorm:"foreignKey:SenderID"`
}

// Subject reassembles the tagged reference, or nil when the notification has
// no subject.
func (n *Notification) Subject() *SubjectRef {
	if n.SubjectType == "" {
		return nil
	}
	return &SubjectRef{Type: n.SubjectType, ID: n.SubjectID}
}

// NotificationResponse is the API rendering of a notification.
type NotificationResponse struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Sender    PublicUser       `json:"sender"`
	Subject   *SubjectRef      `json:"subject,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Sender:    n.Sender.Public(),
		Subject:   n.Subject(),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationStats summarizes a recipient's inbox.
type NotificationStats struct {
	UnreadCount int64 `json:"unread_count"`
	TotalCount  int64 `json:"total_count"`
}
