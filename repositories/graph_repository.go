package repositories

import (
	"errors"

	"gorm.io/gorm"

	"socialspace-api/models"
)

// GraphStore persists the relationship graph: friend requests, friendships
// and follows. Canonical ordering of undirected pairs happens here, at write
// time, so callers never deal with both orientations of the same edge.
type GraphStore interface {
	CreateFriendRequest(fr *models.FriendRequest) error
	GetFriendRequest(id uint) (*models.FriendRequest, error)
	PendingRequestBetween(userA, userB string) (*models.FriendRequest, error)
	PendingRequestFrom(senderID, receiverID string) (*models.FriendRequest, error)
	SaveFriendRequest(fr *models.FriendRequest) error
	DeleteFriendRequest(fr *models.FriendRequest) error
	ListIncomingRequests(userID string, offset, limit int) ([]models.FriendRequest, error)
	ListOutgoingRequests(userID string, offset, limit int) ([]models.FriendRequest, error)

	GetFriendship(id uint) (*models.Friendship, error)
	FriendshipBetween(userA, userB string) (*models.Friendship, error)
	GetOrCreateFriendship(userA, userB string) (*models.Friendship, bool, error)
	DeleteFriendship(f *models.Friendship) error
	ListFriendships(userID string, offset, limit int) ([]models.Friendship, error)

	GetOrCreateFollow(followerID, followingID string) (*models.Follow, bool, error)
	DeleteFollow(followerID, followingID string) error
	DeleteFollowsBetween(userA, userB string) error
	FollowExists(followerID, followingID string) (bool, error)
	ListFollowers(userID string, offset, limit int) ([]models.Follow, error)
	ListFollowing(userID string, offset, limit int) ([]models.Follow, error)
}

type gormGraphStore struct {
	db *gorm.DB
}

func (r *gormGraphStore) CreateFriendRequest(fr *models.FriendRequest) error {
	return r.db.Create(fr).Error
}

func (r *gormGraphStore) GetFriendRequest(id uint) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	if err := r.db.First(&fr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *gormGraphStore) PendingRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.db.Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
		userA, userB, userB, userA, models.FriendRequestStatusPending).First(&fr).Error
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *gormGraphStore) PendingRequestFrom(senderID, receiverID string) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.db.Where("sender_id = ? AND receiver_id = ? AND status = ?",
		senderID, receiverID, models.FriendRequestStatusPending).First(&fr).Error
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *gormGraphStore) SaveFriendRequest(fr *models.FriendRequest) error {
	return r.db.Save(fr).Error
}

func (r *gormGraphStore) DeleteFriendRequest(fr *models.FriendRequest) error {
	return r.db.Delete(fr).Error
}

func (r *gormGraphStore) ListIncomingRequests(userID string, offset, limit int) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Preload("Sender").
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error
	return requests, err
}

func (r *gormGraphStore) ListOutgoingRequests(userID string, offset, limit int) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Preload("Receiver").
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error
	return requests, err
}

func (r *gormGraphStore) GetFriendship(id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *gormGraphStore) FriendshipBetween(userA, userB string) (*models.Friendship, error) {
	low, high := models.CanonicalPair(userA, userB)

	var f models.Friendship
	if err := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *gormGraphStore) GetOrCreateFriendship(userA, userB string) (*models.Friendship, bool, error) {
	low, high := models.CanonicalPair(userA, userB)

	f := models.Friendship{UserLowID: low, UserHighID: high}
	if err := r.db.Create(&f).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, err
		}
		// Lost the race: return the row the winner created.
		existing, lookupErr := r.FriendshipBetween(low, high)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		return existing, false, nil
	}
	return &f, true, nil
}

func (r *gormGraphStore) DeleteFriendship(f *models.Friendship) error {
	return r.db.Delete(f).Error
}

func (r *gormGraphStore) ListFriendships(userID string, offset, limit int) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.Preload("UserLow").Preload("UserHigh").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&friendships).Error
	return friendships, err
}

func (r *gormGraphStore) GetOrCreateFollow(followerID, followingID string) (*models.Follow, bool, error) {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.Create(&follow).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, err
		}
		var existing models.Follow
		if lookupErr := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			First(&existing).Error; lookupErr != nil {
			return nil, false, lookupErr
		}
		return &existing, false, nil
	}
	return &follow, true, nil
}

func (r *gormGraphStore) DeleteFollow(followerID, followingID string) error {
	return r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
}

func (r *gormGraphStore) DeleteFollowsBetween(userA, userB string) error {
	return r.db.Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
		userA, userB, userB, userA).Delete(&models.Follow{}).Error
}

func (r *gormGraphStore) FollowExists(followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	return count > 0, err
}

func (r *gormGraphStore) ListFollowers(userID string, offset, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Preload("Follower").Where("following_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&follows).Error
	return follows, err
}

func (r *gormGraphStore) ListFollowing(userID string, offset, limit int) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Preload("Following").Where("follower_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&follows).Error
	return follows, err
}
