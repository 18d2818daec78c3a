package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/testutil"
	"gorm.io/gorm"
)

func seedMemberships(roomID string, usernames ...string) []models.Membership {
	now := time.Now().UTC()
	memberships := make([]models.Membership, 0, len(usernames))
	for i, username := range usernames {
		memberships = append(memberships, models.Membership{
			RoomID:   roomID,
			Username: username,
			IsAdmin:  i == 0,
			LastSeen: now,
		})
	}
	return memberships
}

func TestRoomRepositoryCreateWithMemberships(t *testing.T) {
	t.Run("persists room and memberships together", func(t *testing.T) {
		db := testutil.OpenTestDB(t)
		testutil.CreateTestUser(t, db, "alice")
		testutil.CreateTestUser(t, db, "bob")
		repo := NewRoomRepository(db)

		room := &models.Room{ID: "room-1", Kind: models.RoomDirect, CreatorUsername: "alice"}
		if err := repo.CreateWithMemberships(room, seedMemberships("room-1", "alice", "bob")); err != nil {
			t.Fatalf("CreateWithMemberships failed: %v", err)
		}

		found, err := repo.FindByID("room-1")
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Kind != models.RoomDirect {
			t.Errorf("Expected kind %q, got %q", models.RoomDirect, found.Kind)
		}

		var count int64
		db.Model(&models.Membership{}).Where("room_id = ?", "room-1").Count(&count)
		if count != 2 {
			t.Errorf("Expected 2 membership rows, got %d", count)
		}
	})

	t.Run("membership failure rolls back the room", func(t *testing.T) {
		db := testutil.OpenTestDB(t)
		testutil.CreateTestUser(t, db, "alice")
		repo := NewRoomRepository(db)

		// Duplicate (room, user) pair violates the composite key inside the
		// transaction.
		room := &models.Room{ID: "room-2", Kind: models.RoomDirect, CreatorUsername: "alice"}
		memberships := seedMemberships("room-2", "alice", "alice")
		if err := repo.CreateWithMemberships(room, memberships); err == nil {
			t.Fatal("Expected duplicate membership to fail")
		}

		if _, err := repo.FindByID("room-2"); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("Expected room to be rolled back, got %v", err)
		}
	})
}

func TestRoomRepositoryFindByExactMembers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	for _, u := range []string{"alice", "bob", "carol"} {
		testutil.CreateTestUser(t, db, u)
	}
	testutil.CreateTestRoom(t, db, "pair", models.RoomDirect, "alice", "bob")
	testutil.CreateTestRoom(t, db, "trio", models.RoomGroup, "alice", "bob", "carol")
	repo := NewRoomRepository(db)

	tests := []struct {
		name     string
		members  []string
		expected string
	}{
		{"exact pair", []string{"alice", "bob"}, "pair"},
		{"pair in reverse order", []string{"bob", "alice"}, "pair"},
		{"exact trio", []string{"carol", "alice", "bob"}, "trio"},
		{"subset of trio does not match", []string{"alice", "carol"}, ""},
		{"superset does not match", []string{"alice", "bob", "carol", "dave"}, ""},
		{"unknown users", []string{"x", "y"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := repo.FindByExactMembers(tt.members)
			if tt.expected == "" {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					t.Errorf("Expected ErrRecordNotFound, got room=%v err=%v", room, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindByExactMembers failed: %v", err)
			}
			if room.ID != tt.expected {
				t.Errorf("Expected room %q, got %q", tt.expected, room.ID)
			}
		})
	}
}

func TestRoomRepositoryFindRoomsWithMessages(t *testing.T) {
	db := testutil.OpenTestDB(t)
	for _, u := range []string{"alice", "bob", "carol"} {
		testutil.CreateTestUser(t, db, u)
	}
	testutil.CreateTestRoom(t, db, "old", models.RoomDirect, "alice", "bob")
	testutil.CreateTestRoom(t, db, "busy", models.RoomGroup, "alice", "bob", "carol")
	testutil.CreateTestRoom(t, db, "silent", models.RoomDirect, "alice", "carol")
	testutil.CreateTestRoom(t, db, "foreign", models.RoomDirect, "bob", "carol")

	messageRepo := NewMessageRepository(db)
	for _, seed := range []struct{ room, sender, body string }{
		{"old", "bob", "early"},
		{"foreign", "bob", "not for alice"},
		{"busy", "carol", "latest"},
	} {
		if err := messageRepo.Create(&models.Message{RoomID: seed.room, SenderUsername: seed.sender, Body: seed.body}); err != nil {
			t.Fatalf("Create message failed: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rooms, err := NewRoomRepository(db).FindRoomsWithMessages("alice")
	if err != nil {
		t.Fatalf("FindRoomsWithMessages failed: %v", err)
	}

	if len(rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(rooms))
	}
	if rooms[0].ID != "busy" || rooms[1].ID != "old" {
		t.Errorf("Expected order [busy old], got [%s %s]", rooms[0].ID, rooms[1].ID)
	}
}

func TestRoomRepositoryUpdateName(t *testing.T) {
	db := testutil.OpenTestDB(t)
	testutil.CreateTestUser(t, db, "alice")
	testutil.CreateTestUser(t, db, "bob")
	testutil.CreateTestRoom(t, db, "room-1", models.RoomGroup, "alice", "bob")
	repo := NewRoomRepository(db)

	room, err := repo.UpdateName("room-1", "Project X")
	if err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}
	if room.Name != "Project X" {
		t.Errorf("Expected name %q, got %q", "Project X", room.Name)
	}

	if _, err := repo.UpdateName("missing", "whatever"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}
