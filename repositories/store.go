package repositories

import (
	"gorm.io/gorm"
)

// Store bundles the per-entity stores and scopes them to one unit of work.
// Transaction hands the callback a Store bound to the open transaction, so an
// operation that touches several entities commits or rolls back as a whole.
type Store interface {
	Graph() GraphStore
	Chats() ChatStore
	Notifications() NotificationStore
	Users() UserStore

	Transaction(fn func(tx Store) error) error
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Graph() GraphStore {
	return &gormGraphStore{db: s.db}
}

func (s *gormStore) Chats() ChatStore {
	return &gormChatStore{db: s.db}
}

func (s *gormStore) Notifications() NotificationStore {
	return &gormNotificationStore{db: s.db}
}

func (s *gormStore) Users() UserStore {
	return &gormUserStore{db: s.db}
}

func (s *gormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
