package models

import (
	"time"
)

// Message is immutable once created. SentAt is assigned by the store at
// append time; the auto-increment ID breaks ties between equal timestamps.
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	RoomID         string    `gorm:"size:36;not null;index" json:"room_id"`
	SenderUsername string    `gorm:"size:32;not null;index" json:"sender_username"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	SentAt         time.Time `gorm:"not null;index" json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID             uint      `json:"id"`
	RoomID         string    `json:"room_id"`
	SenderUsername string    `json:"sender_username"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		RoomID:         m.RoomID,
		SenderUsername: m.SenderUsername,
		Body:           m.Body,
		SentAt:         m.SentAt,
	}
}
