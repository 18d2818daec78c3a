package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a throwaway SQLite database with the full schema applied.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Membership{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateTestUser inserts a user with sensible defaults.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: "Test " + username,
		Avatar:      "/avatars/" + username + ".jpg",
		Status:      models.StatusOffline,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create test user %s: %v", username, err)
	}
	return user
}

// CreateTestRoom inserts a room plus memberships for the given usernames.
// The first username is the creator and admin.
func CreateTestRoom(t *testing.T, db *gorm.DB, id string, kind models.RoomKind, usernames ...string) *models.Room {
	t.Helper()

	room := &models.Room{
		ID:              id,
		Kind:            kind,
		CreatorUsername: usernames[0],
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("create test room %s: %v", id, err)
	}

	now := time.Now().UTC()
	for i, username := range usernames {
		membership := &models.Membership{
			RoomID:   id,
			Username: username,
			IsAdmin:  i == 0,
			LastSeen: now,
		}
		if err := db.Create(membership).Error; err != nil {
			t.Fatalf("create test membership %s/%s: %v", id, username, err)
		}
	}
	return room
}
