package services

import (
	"errors"

	"gorm.io/gorm"

	"socialspace-api/models"
	"socialspace-api/repositories"
)

// RelationshipService owns the friend-request state machine and the rules
// that keep friendship and follow edges consistent with it. Every operation
// that mutates more than one edge runs in a single transaction, with the
// resulting notification written inside the same transaction.
type RelationshipService struct {
	store      repositories.Store
	dispatcher *NotificationService
}

func NewRelationshipService(store repositories.Store, dispatcher *NotificationService) *RelationshipService {
	return &RelationshipService{store: store, dispatcher: dispatcher}
}

// SendFriendRequest creates a pending request plus the speculative follow
// edge sender -> receiver. The follow previews the relationship and is
// removed again when the request resolves.
func (s *RelationshipService) SendFriendRequest(senderID, receiverID string) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfTarget
	}

	if _, err := s.store.Users().Get(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.store.Graph().FriendshipBetween(senderID, receiverID); err == nil {
		return nil, ErrAlreadyFriends
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.store.Graph().PendingRequestBetween(senderID, receiverID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestStatusPending,
	}

	err := s.store.Transaction(func(tx repositories.Store) error {
		if err := tx.Graph().CreateFriendRequest(request); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRequest
			}
			return err
		}
		if _, _, err := tx.Graph().GetOrCreateFollow(senderID, receiverID); err != nil {
			return err
		}
		return s.dispatcher.Consume(tx.Notifications(), FriendRequestCreated{Request: request})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// AcceptFriendRequest transitions the request to accepted, creates the
// friendship and removes the follow edges in both directions, all atomically.
func (s *RelationshipService) AcceptFriendRequest(requestID uint, actorID string) (*models.FriendRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.ReceiverID != actorID {
		return nil, ErrForbidden
	}
	if !request.IsPending() {
		return nil, ErrInvalidState
	}

	err = s.store.Transaction(func(tx repositories.Store) error {
		request.Status = models.FriendRequestStatusAccepted
		if err := tx.Graph().SaveFriendRequest(request); err != nil {
			return err
		}
		if _, _, err := tx.Graph().GetOrCreateFriendship(request.SenderID, request.ReceiverID); err != nil {
			return err
		}
		if err := tx.Graph().DeleteFollowsBetween(request.SenderID, request.ReceiverID); err != nil {
			return err
		}
		return s.dispatcher.Consume(tx.Notifications(), FriendRequestAccepted{Request: request})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// RejectFriendRequest transitions the request to rejected and removes the
// speculative follow created at send time.
func (s *RelationshipService) RejectFriendRequest(requestID uint, actorID string) (*models.FriendRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.ReceiverID != actorID {
		return nil, ErrForbidden
	}
	if !request.IsPending() {
		return nil, ErrInvalidState
	}

	err = s.store.Transaction(func(tx repositories.Store) error {
		request.Status = models.FriendRequestStatusRejected
		if err := tx.Graph().SaveFriendRequest(request); err != nil {
			return err
		}
		if err := tx.Graph().DeleteFollow(request.SenderID, request.ReceiverID); err != nil {
			return err
		}
		return s.dispatcher.Consume(tx.Notifications(), FriendRequestRejected{Request: request})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// CancelFriendRequest deletes a pending request, sender only. The speculative
// follow goes with it.
func (s *RelationshipService) CancelFriendRequest(requestID uint, actorID string) error {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return err
	}
	if request.SenderID != actorID {
		return ErrForbidden
	}
	if !request.IsPending() {
		return ErrInvalidState
	}

	return s.store.Transaction(func(tx repositories.Store) error {
		if err := tx.Graph().DeleteFriendRequest(request); err != nil {
			return err
		}
		return tx.Graph().DeleteFollow(request.SenderID, request.ReceiverID)
	})
}

// RemoveFriendship deletes the friendship row. Prior friend requests stay as
// they are; unfriending never resurrects them.
func (s *RelationshipService) RemoveFriendship(friendshipID uint, actorID string) error {
	friendship, err := s.store.Graph().GetFriendship(friendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !friendship.Includes(actorID) {
		return ErrForbidden
	}
	return s.store.Graph().DeleteFriendship(friendship)
}

// Follow creates a directed follow edge. Idempotent: following an already
// followed user returns the existing edge. Only a newly created edge raises
// a notification.
func (s *RelationshipService) Follow(followerID, targetID string) (*models.Follow, error) {
	if followerID == targetID {
		return nil, ErrSelfTarget
	}

	if _, err := s.store.Users().Get(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var follow *models.Follow
	err := s.store.Transaction(func(tx repositories.Store) error {
		var created bool
		var err error
		follow, created, err = tx.Graph().GetOrCreateFollow(followerID, targetID)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return s.dispatcher.Consume(tx.Notifications(), FollowCreated{Follow: follow})
	})
	if err != nil {
		return nil, err
	}
	return follow, nil
}

// Unfollow removes the edge if present; unfollowing a user that was never
// followed is a no-op.
func (s *RelationshipService) Unfollow(followerID, targetID string) error {
	return s.store.Graph().DeleteFollow(followerID, targetID)
}

func (s *RelationshipService) ListFriends(userID string, page, limit int) ([]models.PublicUser, error) {
	offset := (page - 1) * limit
	friendships, err := s.store.Graph().ListFriendships(userID, offset, limit)
	if err != nil {
		return nil, err
	}

	friends := make([]models.PublicUser, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		if f.UserLowID == userID {
			friends = append(friends, f.UserHigh.Public())
		} else {
			friends = append(friends, f.UserLow.Public())
		}
	}
	return friends, nil
}

func (s *RelationshipService) ListIncomingRequests(userID string, page, limit int) ([]models.FriendRequest, error) {
	return s.store.Graph().ListIncomingRequests(userID, (page-1)*limit, limit)
}

func (s *RelationshipService) ListOutgoingRequests(userID string, page, limit int) ([]models.FriendRequest, error) {
	return s.store.Graph().ListOutgoingRequests(userID, (page-1)*limit, limit)
}

func (s *RelationshipService) ListFollowers(userID string, page, limit int) ([]models.PublicUser, error) {
	follows, err := s.store.Graph().ListFollowers(userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	users := make([]models.PublicUser, 0, len(follows))
	for i := range follows {
		users = append(users, follows[i].Follower.Public())
	}
	return users, nil
}

func (s *RelationshipService) ListFollowing(userID string, page, limit int) ([]models.PublicUser, error) {
	follows, err := s.store.Graph().ListFollowing(userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	users := make([]models.PublicUser, 0, len(follows))
	for i := range follows {
		users = append(users, follows[i].Following.Public())
	}
	return users, nil
}

// FriendshipStatus summarizes where two users stand relative to each other.
type FriendshipStatus struct {
	IsFriend           bool  `json:"is_friend"`
	IsFollowing        bool  `json:"is_following"`
	HasPendingSent     bool  `json:"has_pending_sent"`
	HasPendingReceived bool  `json:"has_pending_received"`
	SentRequestID      *uint `json:"sent_request_id,omitempty"`
	ReceivedRequestID  *uint `json:"received_request_id,omitempty"`
}

func (s *RelationshipService) FriendshipStatus(userID, targetID string) (*FriendshipStatus, error) {
	status := &FriendshipStatus{}
	if userID == targetID {
		return status, nil
	}

	graph := s.store.Graph()

	if _, err := graph.FriendshipBetween(userID, targetID); err == nil {
		status.IsFriend = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	following, err := graph.FollowExists(userID, targetID)
	if err != nil {
		return nil, err
	}
	status.IsFollowing = following

	if sent, err := graph.PendingRequestFrom(userID, targetID); err == nil {
		status.HasPendingSent = true
		status.SentRequestID = &sent.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if received, err := graph.PendingRequestFrom(targetID, userID); err == nil {
		status.HasPendingReceived = true
		status.ReceivedRequestID = &received.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return status, nil
}

func (s *RelationshipService) loadRequest(requestID uint) (*models.FriendRequest, error) {
	request, err := s.store.Graph().GetFriendRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}
