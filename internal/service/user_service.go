package service

import (
	"errors"
	"strings"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"gorm.io/gorm"
)

// UserService exposes the read-side user operations the chat core needs.
// Account creation and credentials live with the external identity service.
type UserService struct {
	userRepo repository.UserRepositoryInterface
}

func NewUserService(userRepo repository.UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchUsers(query, limit)
}
