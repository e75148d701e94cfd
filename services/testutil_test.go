package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"socialspace-api/database"
	"socialspace-api/models"
	"socialspace-api/repositories"
)

// setupStore opens an isolated in-memory database per test and migrates the
// full schema, so the unique indexes behave the same as in production.
func setupStore(t *testing.T) repositories.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	return repositories.NewStore(db)
}

func createUser(t *testing.T, store repositories.Store, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, store.Users().Create(user))
	return user
}

// broadcastCall records one Hub.Broadcast invocation.
type broadcastCall struct {
	chatID  uint
	payload any
	exclude string
}

// recordingBroadcaster stands in for the hub in chat service tests.
type recordingBroadcaster struct {
	calls []broadcastCall
}

func (b *recordingBroadcaster) Broadcast(chatID uint, payload any, excludeUserID string) {
	b.calls = append(b.calls, broadcastCall{chatID: chatID, payload: payload, exclude: excludeUserID})
}

func newRelationshipService(store repositories.Store) (*RelationshipService, *NotificationService) {
	dispatcher := NewNotificationService(store.Notifications())
	return NewRelationshipService(store, dispatcher), dispatcher
}

func newChatSession(store repositories.Store, hub Broadcaster) (*ChatSession, *NotificationService) {
	dispatcher := NewNotificationService(store.Notifications())
	return NewChatSession(store, dispatcher, hub), dispatcher
}
