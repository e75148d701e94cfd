package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialspace-api/models"
)

func TestGetOrCreateDirectChat_Idempotent(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	first, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	// The reverse order resolves to the same chat.
	second, err := svc.GetOrCreateDirectChat(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	low, high := models.CanonicalPair(alice.ID, bob.ID)
	assert.Equal(t, low, first.UserLowID)
	assert.Equal(t, high, first.UserHighID)
}

func TestGetOrCreateDirectChat_SelfTarget(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")

	_, err := svc.GetOrCreateDirectChat(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestGetOrCreateDirectChat_UnknownTarget(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")

	_, err := svc.GetOrCreateDirectChat(alice.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendMessage(t *testing.T) {
	store := setupStore(t)
	hub := &recordingBroadcaster{}
	svc, dispatcher := newChatSession(store, hub)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	message, err := svc.SendMessage(chat.ID, alice.ID, "  hello bob  ")
	require.NoError(t, err)
	assert.Equal(t, "hello bob", message.Text)
	assert.False(t, message.IsRead)

	// The chat's last-message pointer moved.
	reloaded, err := store.Chats().GetChat(chat.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastMessageID)
	assert.Equal(t, message.ID, *reloaded.LastMessageID)

	// The recipient gets a message notification.
	notifications, total, err := dispatcher.List(bob.ID, models.NotificationKindMessage, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notifications, 1)
	require.NotNil(t, notifications[0].Subject)
	assert.Equal(t, message.ID, notifications[0].Subject.ID)

	// The broadcast skips the sender's own connections.
	require.Len(t, hub.calls, 1)
	call := hub.calls[0]
	assert.Equal(t, chat.ID, call.chatID)
	assert.Equal(t, alice.ID, call.exclude)
	event, ok := call.payload.(WSEvent)
	require.True(t, ok)
	assert.Equal(t, "new_message", event.Event)
}

func TestSendMessage_EmptyText(t *testing.T) {
	store := setupStore(t)
	hub := &recordingBroadcaster{}
	svc, _ := newChatSession(store, hub)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(chat.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Empty(t, hub.calls)
}

func TestSendMessage_NonParticipant(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(chat.ID, carol.ID, "let me in")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSendMessage_UnknownChat(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")

	_, err := svc.SendMessage(999, alice.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkChatRead(t *testing.T) {
	store := setupStore(t)
	hub := &recordingBroadcaster{}
	svc, _ := newChatSession(store, hub)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(chat.ID, alice.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(chat.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.SendMessage(chat.ID, bob.ID, "reply")
	require.NoError(t, err)
	hub.calls = nil

	// Bob reading flips alice's two messages, never his own.
	updated, err := svc.MarkChatRead(chat.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	messages, err := store.Chats().ListMessages(chat.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for _, m := range messages {
		if m.SenderID == alice.ID {
			assert.True(t, m.IsRead)
		} else {
			assert.False(t, m.IsRead)
		}
	}

	// The other side hears about it, the reader does not.
	require.Len(t, hub.calls, 1)
	assert.Equal(t, bob.ID, hub.calls[0].exclude)
	event, ok := hub.calls[0].payload.(WSEvent)
	require.True(t, ok)
	assert.Equal(t, "messages_read", event.Event)

	// Reading again finds nothing unread.
	updated, err = svc.MarkChatRead(chat.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated)
}

func TestEditMessage(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)
	message, err := svc.SendMessage(chat.ID, alice.ID, "helo")
	require.NoError(t, err)

	// Only the sender may edit.
	_, err = svc.EditMessage(message.ID, bob.ID, "hijacked")
	assert.ErrorIs(t, err, ErrForbidden)

	// Editing to the same text does not set the edited flag.
	same, err := svc.EditMessage(message.ID, alice.ID, "helo")
	require.NoError(t, err)
	assert.False(t, same.IsEdited)

	edited, err := svc.EditMessage(message.ID, alice.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Text)
	assert.True(t, edited.IsEdited)

	_, err = svc.EditMessage(message.ID, alice.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestDeleteMessage(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)
	first, err := svc.SendMessage(chat.ID, alice.ID, "first")
	require.NoError(t, err)
	second, err := svc.SendMessage(chat.ID, alice.ID, "second")
	require.NoError(t, err)

	// Only the sender may delete.
	err = svc.DeleteMessage(second.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Deleting the newest message falls the pointer back to the previous one.
	require.NoError(t, svc.DeleteMessage(second.ID, alice.ID))
	reloaded, err := store.Chats().GetChat(chat.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastMessageID)
	assert.Equal(t, first.ID, *reloaded.LastMessageID)

	// Deleting the last remaining message clears it.
	require.NoError(t, svc.DeleteMessage(first.ID, alice.ID))
	reloaded, err = store.Chats().GetChat(chat.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastMessageID)
}

func TestIsParticipant(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)

	member, err := svc.IsParticipant(chat.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = svc.IsParticipant(chat.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, member)

	// An unknown chat is simply not joinable.
	member, err = svc.IsParticipant(999, alice.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestListChats(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SendMessage(chat.ID, bob.ID, "hey alice")
	require.NoError(t, err)

	chats, err := svc.ListChats(alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, chat.ID, chats[0].ID)
	assert.Equal(t, "bob", chats[0].Participant.Username)
	assert.EqualValues(t, 1, chats[0].UnreadCount)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "hey alice", chats[0].LastMessage.Text)
	assert.Equal(t, "bob", chats[0].LastMessage.Sender.Username)
}

func TestListMessages(t *testing.T) {
	store := setupStore(t)
	svc, _ := newChatSession(store, nil)
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	chat, err := svc.GetOrCreateDirectChat(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.SendMessage(chat.ID, alice.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(chat.ID, bob.ID, "two")
	require.NoError(t, err)

	// Oldest first.
	messages, err := svc.ListMessages(chat.ID, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Text)
	assert.Equal(t, "two", messages[1].Text)
	assert.Equal(t, "alice", messages[0].Sender.Username)

	_, err = svc.ListMessages(chat.ID, carol.ID, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}
