package models

import (
	"time"
)

// Membership binds one user to one room. At most one row exists per
// (room, user); the composite primary key enforces that in storage.
type Membership struct {
	RoomID   string    `gorm:"primaryKey;size:36" json:"room_id"`
	Username string    `gorm:"primaryKey;size:32" json:"username"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	LastSeen time.Time `gorm:"not null" json:"last_seen"`

	User User `gorm:"foreignKey:Username;references:Username" json:"-"`
}

type MembershipResponse struct {
	RoomID   string    `json:"room_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	IsAdmin  bool      `json:"is_admin"`
	LastSeen time.Time `json:"last_seen"`
}

func (m *Membership) ToResponse() MembershipResponse {
	return MembershipResponse{
		RoomID:   m.RoomID,
		Username: m.Username,
		IsAdmin:  m.IsAdmin,
		LastSeen: m.LastSeen,
	}
}
