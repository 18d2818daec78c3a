package repository

import (
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	FindByUsername(username string) (*models.User, error)
	FindAllByUsername(usernames []string) ([]models.User, error)
	FindAllByStatus(status models.UserStatus) ([]models.User, error)
	Update(user *models.User) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// RoomRepositoryInterface defines the contract for room repository operations
type RoomRepositoryInterface interface {
	CreateWithMemberships(room *models.Room, memberships []models.Membership) error
	FindByID(id string) (*models.Room, error)
	FindByExactMembers(members []string) (*models.Room, error)
	FindRoomsWithMessages(username string) ([]models.Room, error)
	UpdateName(id string, name string) (*models.Room, error)
}

// MembershipRepositoryInterface defines the contract for membership repository operations
type MembershipRepositoryInterface interface {
	FindByRoomID(roomID string) ([]models.Membership, error)
	Find(roomID, username string) (*models.Membership, error)
	CreateAll(memberships []models.Membership) error
	Delete(roomID, username string) error
	SetAdmin(roomID, username string, isAdmin bool) error
	TouchLastSeen(roomID, username string) (*models.Membership, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByRoomID(roomID string) ([]models.Message, error)
	FindLastByRoomID(roomID string) (*models.Message, error)
	CountUnseen(roomID, viewer string) (int64, error)
}
