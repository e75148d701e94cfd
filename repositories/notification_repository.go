package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialspace-api/models"
)

// NotificationStore persists notifications. GetOrCreate implements the dedup
// upsert: the full (recipient, sender, kind, subject) tuple identifies a
// logical notification, and a second call with the same tuple returns the
// existing row.
type NotificationStore interface {
	GetOrCreate(n *models.Notification) (*models.Notification, bool, error)
	Get(id string) (*models.Notification, error)
	MarkRead(n *models.Notification) error
	MarkAllRead(recipientID string) (int64, error)
	List(recipientID string, kind models.NotificationKind, offset, limit int) ([]models.Notification, int64, error)
	Stats(recipientID string) (*models.NotificationStats, error)
}

type gormNotificationStore struct {
	db *gorm.DB
}

func (r *gormNotificationStore) tupleQuery(n *models.Notification) *gorm.DB {
	return r.db.Where("recipient_id = ? AND sender_id = ? AND kind = ? AND subject_type = ? AND subject_id = ?",
		n.RecipientID, n.SenderID, n.Kind, n.SubjectType, n.SubjectID)
}

func (r *gormNotificationStore) GetOrCreate(n *models.Notification) (*models.Notification, bool, error) {
	var existing models.Notification
	err := r.tupleQuery(n).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	n.ID = uuid.New().String()
	if err := r.db.Create(n).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, err
		}
		if lookupErr := r.tupleQuery(n).First(&existing).Error; lookupErr != nil {
			return nil, false, lookupErr
		}
		return &existing, false, nil
	}
	return n, true, nil
}

func (r *gormNotificationStore) Get(id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.Preload("Sender").First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *gormNotificationStore) MarkRead(n *models.Notification) error {
	return r.db.Model(n).Update("is_read", true).Error
}

func (r *gormNotificationStore) MarkAllRead(recipientID string) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *gormNotificationStore) List(recipientID string, kind models.NotificationKind, offset, limit int) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.Preload("Sender").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
	return notifications, total, err
}

func (r *gormNotificationStore) Stats(recipientID string) (*models.NotificationStats, error) {
	var stats models.NotificationStats
	if err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&stats.UnreadCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
