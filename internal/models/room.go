package models

import (
	"time"
)

type RoomKind string

const (
	RoomDirect RoomKind = "direct"
	RoomGroup  RoomKind = "group"
)

type Room struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Kind is fixed at creation: direct for exactly two initial members,
	// group otherwise. It is never recomputed when membership changes.
	Kind            RoomKind `gorm:"type:varchar(10);not null" json:"kind"`
	Name            string   `gorm:"size:100" json:"name"`
	CreatorUsername string   `gorm:"size:32;not null;index" json:"creator_username"`
}

// RoomWithMembers is the standard room payload: the room plus its current
// membership rows.
type RoomWithMembers struct {
	Room    Room                 `json:"room"`
	Members []MembershipResponse `json:"members"`
}

// RoomSummary is computed per query, never stored: the room, its most recent
// message, the viewer's unseen count and, for direct rooms, the counterpart's
// avatar standing in for the room's own.
type RoomSummary struct {
	Room        Room                 `json:"room"`
	Members     []MembershipResponse `json:"members"`
	LastMessage *MessageResponse     `json:"last_message"`
	UnseenCount int64                `json:"unseen_count"`
	Avatar      string               `json:"avatar"`
}
