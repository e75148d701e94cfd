package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialspace-api/models"
)

func TestSendFriendRequest_CreatesPendingAndFollow(t *testing.T) {
	store := setupStore(t)
	svc, dispatcher := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusPending, request.Status)
	assert.Equal(t, alice.ID, request.SenderID)
	assert.Equal(t, bob.ID, request.ReceiverID)

	// Sending previews the relationship with a follow edge.
	following, err := store.Graph().FollowExists(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// The receiver gets exactly one friend_request notification.
	notifications, total, err := dispatcher.List(bob.ID, models.NotificationKindFriendRequest, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, alice.ID, notifications[0].Sender.ID)
	require.NotNil(t, notifications[0].Subject)
	assert.Equal(t, models.SubjectTypeFriendRequest, notifications[0].Subject.Type)
	assert.Equal(t, request.ID, notifications[0].Subject.ID)
}

func TestSendFriendRequest_SelfTarget(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")

	_, err := svc.SendFriendRequest(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestSendFriendRequest_UnknownReceiver(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")

	_, err := svc.SendFriendRequest(alice.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendFriendRequest_Duplicate(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	_, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// A pending request blocks the reverse direction too.
	_, err = svc.SendFriendRequest(bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSendFriendRequest_AlreadyFriends(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
	_, err = svc.SendFriendRequest(bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestAcceptFriendRequest(t *testing.T) {
	store := setupStore(t)
	svc, dispatcher := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	accepted, err := svc.AcceptFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusAccepted, accepted.Status)

	// One friendship row, canonical order.
	friendship, err := store.Graph().FriendshipBetween(bob.ID, alice.ID)
	require.NoError(t, err)
	low, high := models.CanonicalPair(alice.ID, bob.ID)
	assert.Equal(t, low, friendship.UserLowID)
	assert.Equal(t, high, friendship.UserHighID)

	// The speculative follow is gone in both directions.
	following, err := store.Graph().FollowExists(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
	following, err = store.Graph().FollowExists(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// The original sender is told about the acceptance.
	notifications, total, err := dispatcher.List(alice.ID, models.NotificationKindFriendAccept, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, bob.ID, notifications[0].Sender.ID)
}

func TestAcceptFriendRequest_SenderCannotAccept(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(request.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptFriendRequest_Twice(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRejectFriendRequest(t *testing.T) {
	store := setupStore(t)
	svc, dispatcher := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	rejected, err := svc.RejectFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusRejected, rejected.Status)

	// No friendship, no follow, and the sender is not notified.
	_, err = store.Graph().FriendshipBetween(alice.ID, bob.ID)
	assert.Error(t, err)
	following, err := store.Graph().FollowExists(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	stats, err := dispatcher.Stats(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalCount)
}

func TestRejectFriendRequest_Terminal(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.RejectFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelFriendRequest(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	// Only the sender may cancel.
	err = svc.CancelFriendRequest(request.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.CancelFriendRequest(request.ID, alice.ID))

	_, err = store.Graph().GetFriendRequest(request.ID)
	assert.Error(t, err)
	following, err := store.Graph().FollowExists(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// The pair is free again after a cancel.
	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.NoError(t, err)
}

func TestRemoveFriendship(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)

	friendship, err := store.Graph().FriendshipBetween(alice.ID, bob.ID)
	require.NoError(t, err)

	err = svc.RemoveFriendship(friendship.ID, carol.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.RemoveFriendship(friendship.ID, alice.ID))
	_, err = store.Graph().FriendshipBetween(alice.ID, bob.ID)
	assert.Error(t, err)
}

func TestFollow_Idempotent(t *testing.T) {
	store := setupStore(t)
	svc, dispatcher := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	first, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)

	second, err := svc.Follow(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Only the first follow notifies.
	stats, err := dispatcher.Stats(bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalCount)
}

func TestFollow_SelfTarget(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")

	_, err := svc.Follow(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestUnfollow_AbsentEdgeIsNoOp(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	assert.NoError(t, svc.Unfollow(alice.ID, bob.ID))
}

func TestFriendshipStatus(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	status, err := svc.FriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFriend)
	assert.False(t, status.IsFollowing)
	assert.False(t, status.HasPendingSent)
	assert.False(t, status.HasPendingReceived)

	request, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	status, err = svc.FriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.HasPendingSent)
	assert.True(t, status.IsFollowing)
	require.NotNil(t, status.SentRequestID)
	assert.Equal(t, request.ID, *status.SentRequestID)

	// The same request seen from the other side.
	status, err = svc.FriendshipStatus(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, status.HasPendingReceived)
	require.NotNil(t, status.ReceivedRequestID)
	assert.Equal(t, request.ID, *status.ReceivedRequestID)

	_, err = svc.AcceptFriendRequest(request.ID, bob.ID)
	require.NoError(t, err)

	status, err = svc.FriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFriend)
	assert.False(t, status.HasPendingSent)
	assert.False(t, status.IsFollowing)
}

func TestListFriends(t *testing.T) {
	store := setupStore(t)
	svc, _ := newRelationshipService(store)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	for _, friend := range []*models.User{bob, carol} {
		request, err := svc.SendFriendRequest(alice.ID, friend.ID)
		require.NoError(t, err)
		_, err = svc.AcceptFriendRequest(request.ID, friend.ID)
		require.NoError(t, err)
	}

	friends, err := svc.ListFriends(alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, friends, 2)

	usernames := []string{friends[0].Username, friends[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, usernames)
}
