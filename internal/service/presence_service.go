package service

import (
	"errors"
	"log"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/cache"
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"gorm.io/gorm"
)

// PresenceTopic is the shared broadcast channel for presence updates.
const PresenceTopic = "active"

// PresenceService keeps each user's online/offline flag and last-login
// timestamp. Status is last-writer-wins: with two devices, one disconnect
// flips the user offline even if the other device is still connected. Known
// limitation, no per-connection refcount.
type PresenceService struct {
	userRepo      repository.UserRepositoryInterface
	presenceCache *cache.PresenceCache
	deliverer     Deliverer
}

func NewPresenceService(userRepo repository.UserRepositoryInterface, presenceCache *cache.PresenceCache, deliverer Deliverer) *PresenceService {
	return &PresenceService{
		userRepo:      userRepo,
		presenceCache: presenceCache,
		deliverer:     deliverer,
	}
}

// Connect marks the user online and broadcasts the updated record. Last-login
// is untouched here; it is stamped on disconnect.
func (s *PresenceService) Connect(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Status = models.StatusOnline
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if err := s.presenceCache.SetUserOnline(username); err != nil {
		log.Printf("presence: cache online for %s failed: %v", username, err)
	}

	s.deliverer.Broadcast(PresenceTopic, user.ToResponse())
	return user, nil
}

// Disconnect marks the user offline, stamps last-login and broadcasts.
func (s *PresenceService) Disconnect(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	user.Status = models.StatusOffline
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if err := s.presenceCache.SetUserOffline(username); err != nil {
		log.Printf("presence: cache offline for %s failed: %v", username, err)
	}

	s.deliverer.Broadcast(PresenceTopic, user.ToResponse())
	return user, nil
}

func (s *PresenceService) ListOnline() ([]models.User, error) {
	return s.userRepo.FindAllByStatus(models.StatusOnline)
}
