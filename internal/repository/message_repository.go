package repository

import (
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stamps SentAt from the server clock. Caller-supplied timestamps are
// ignored: the store is the sole ordering authority for a room.
func (r *MessageRepository) Create(message *models.Message) error {
	message.SentAt = time.Now().UTC()
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByRoomID(roomID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("room_id = ?", roomID).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) FindLastByRoomID(roomID string) (*models.Message, error) {
	var message models.Message
	err := r.db.Where("room_id = ?", roomID).
		Order("sent_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// CountUnseen counts messages sent by others after the viewer's last-seen
// watermark. A viewer with no membership in the room gets 0.
func (r *MessageRepository) CountUnseen(roomID, viewer string) (int64, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages msg
		JOIN memberships mem ON mem.room_id = msg.room_id
		WHERE mem.room_id = ?
		  AND mem.username = ?
		  AND msg.sender_username <> ?
		  AND msg.sent_at > mem.last_seen
	`, roomID, viewer, viewer).Scan(&count).Error
	return count, err
}
