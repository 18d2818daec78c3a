package repository

import (
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateWithMemberships persists the room and its initial membership rows as
// one transaction. Partial membership creation is never observable.
func (r *RoomRepository) CreateWithMemberships(room *models.Room, memberships []models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		return tx.Create(&memberships).Error
	})
}

func (r *RoomRepository) FindByID(id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByExactMembers matches a room whose membership set equals the requested
// set: same size, same identities. {A,B} never matches a room {A,B,C}.
func (r *RoomRepository) FindByExactMembers(members []string) (*models.Room, error) {
	var room models.Room
	err := r.db.Raw(`
		SELECT r.* FROM rooms r
		WHERE (SELECT COUNT(*) FROM memberships m WHERE m.room_id = r.id) = ?
		  AND (SELECT COUNT(*) FROM memberships m WHERE m.room_id = r.id AND m.username IN ?) = ?
		LIMIT 1
	`, len(members), members, len(members)).Scan(&room).Error
	if err != nil {
		return nil, err
	}
	if room.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &room, nil
}

// FindRoomsWithMessages returns the user's rooms that contain at least one
// message, most recent activity first.
func (r *RoomRepository) FindRoomsWithMessages(username string) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Raw(`
		SELECT r.* FROM rooms r
		JOIN memberships mem ON mem.room_id = r.id
		WHERE mem.username = ?
		  AND EXISTS (SELECT 1 FROM messages msg WHERE msg.room_id = r.id)
		ORDER BY (SELECT MAX(msg.sent_at) FROM messages msg WHERE msg.room_id = r.id) DESC
	`, username).Scan(&rooms).Error
	return rooms, err
}

func (r *RoomRepository) UpdateName(id string, name string) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	room.Name = name
	if err := r.db.Save(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}
