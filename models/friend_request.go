package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest transitions pending -> accepted | rejected; both are terminal.
// Unique on (sender, receiver). PendingKey holds the canonical pair while the
// request is pending and NULL afterwards, so the unique index on it allows at
// most one pending request per unordered pair regardless of direction, while
// resolved rows in both directions can coexist.
type FriendRequest struct {
	ID         uint                `json:"id" gorm:"primaryKey"`
	SenderID   string              `json:"sender_id" gorm:"not null;size:191;uniqueIndex:uk_friend_requests_pair,priority:1"`
	ReceiverID string              `json:"receiver_id" gorm:"not null;size:191;uniqueIndex:uk_friend_requests_pair,priority:2;index:idx_friend_requests_receiver_status,priority:1"`
	Status     FriendRequestStatus `json:"status" gorm:"not null;default:'pending';size:20;index:idx_friend_requests_receiver_status,priority:2"`
	PendingKey *string             `json:"-" gorm:"size:383;uniqueIndex:uk_friend_requests_pending_pair"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	Sender   User `json:"sender" gorm:"foreignKey:SenderID"`
	Receiver User `json:"receiver" gorm:"foreignKey:ReceiverID"`
}

func (fr *FriendRequest) IsPending() bool {
	return fr.Status == FriendRequestStatusPending
}

// BeforeSave keeps PendingKey in sync with the status on every create and
// update.
func (fr *FriendRequest) BeforeSave(*gorm.DB) error {
	if fr.IsPending() {
		low, high := CanonicalPair(fr.SenderID, fr.ReceiverID)
		key := low + ":" + high
		fr.PendingKey = &key
	} else {
		fr.PendingKey = nil
	}
	return nil
}

// Friendship is an undirected edge stored lower id first, so (A,B) and (B,A)
// always collapse to the same row.
type Friendship struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserLowID  string    `json:"user_low_id" gorm:"not null;size:191;uniqueIndex:uk_friendships_pair,priority:1"`
	UserHighID string    `json:"user_high_id" gorm:"not null;size:191;uniqueIndex:uk_friendships_pair,priority:2"`
	CreatedAt  time.Time `json:"created_at"`

	UserLow  User `json:"user_low" gorm:"foreignKey:UserLowID"`
	UserHigh User `json:"user_high" gorm:"foreignKey:UserHighID"`
}

// CanonicalPair orders two user ids lower first.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Includes reports whether userID is one of the two members.
func (f *Friendship) Includes(userID string) bool {
	return f.UserLowID == userID || f.UserHighID == userID
}

// OtherMember returns the member that is not userID.
func (f *Friendship) OtherMember(userID string) string {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}
