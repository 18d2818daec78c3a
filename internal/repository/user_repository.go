package repository

import (
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAllByUsername(usernames []string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("username IN ?", usernames).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindAllByStatus(status models.UserStatus) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("status = ?", status).Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var users []models.User

	// Search by username or display name (case insensitive)
	err := r.db.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", "%"+query+"%", "%"+query+"%").
		Limit(limit).
		Find(&users).Error

	return users, err
}
