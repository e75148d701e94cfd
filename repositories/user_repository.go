package repositories

import (
	"gorm.io/gorm"

	"socialspace-api/models"
)

// UserStore is the accounts collaborator: identity creation for auth and
// read-only lookups for rendering. Relationship and chat state never flows
// through it.
type UserStore interface {
	Create(u *models.User) error
	Get(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetMany(ids []string) ([]models.User, error)
}

type gormUserStore struct {
	db *gorm.DB
}

func (r *gormUserStore) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *gormUserStore) Get(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserStore) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserStore) GetMany(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}
