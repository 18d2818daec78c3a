package cache

import (
	"fmt"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	RoomMessagesTTL = 5 * time.Minute
)

// RoomCache caches per-room message history, invalidated on every append.
// Unseen counts are deliberately not cached here: they must always reflect
// the latest last-seen watermark.
type RoomCache struct {
	redis *RedisCache
}

// NewRoomCache creates a new room cache
func NewRoomCache(redis *RedisCache) *RoomCache {
	return &RoomCache{redis: redis}
}

func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("room:%s:messages", roomID)
}

// GetMessages retrieves cached room history
func (rc *RoomCache) GetMessages(roomID string) ([]models.Message, bool) {
	if rc == nil || rc.redis == nil {
		return nil, false
	}
	data, err := rc.redis.Get(roomMessagesKey(roomID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetMessages caches room history
func (rc *RoomCache) SetMessages(roomID string, messages []models.Message) error {
	if rc == nil || rc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return rc.redis.Set(roomMessagesKey(roomID), data, RoomMessagesTTL)
}

// InvalidateMessages drops the cached history for a room
func (rc *RoomCache) InvalidateMessages(roomID string) error {
	if rc == nil || rc.redis == nil {
		return nil
	}
	return rc.redis.Delete(roomMessagesKey(roomID))
}
