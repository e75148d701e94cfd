package services

import "socialspace-api/models"

// Event is a domain event raised by a relationship or chat mutation and
// consumed synchronously by the NotificationService, inside the transaction
// that produced it.
type Event interface {
	eventName() string
}

type FriendRequestCreated struct {
	Request *models.FriendRequest
}

func (FriendRequestCreated) eventName() string { return "friend_request.created" }

type FriendRequestAccepted struct {
	Request *models.FriendRequest
}

func (FriendRequestAccepted) eventName() string { return "friend_request.accepted" }

type FriendRequestRejected struct {
	Request *models.FriendRequest
}

func (FriendRequestRejected) eventName() string { return "friend_request.rejected" }

type FollowCreated struct {
	Follow *models.Follow
}

func (FollowCreated) eventName() string { return "follow.created" }

type MessageSent struct {
	Message     *models.Message
	RecipientID string
}

func (MessageSent) eventName() string { return "message.sent" }
