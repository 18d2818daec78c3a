package models

import (
	"time"
)

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
)

type User struct {
	// Username is the primary identity; email is a secondary unique key and
	// plays no part in room logic.
	Username    string     `gorm:"primaryKey;size:32" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	Avatar      string     `json:"avatar"`
	Status      UserStatus `gorm:"type:varchar(10);default:'offline'" json:"status"`
	LastLogin   *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserResponse struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	Status      UserStatus `json:"status"`
	LastLogin   *time.Time `json:"last_login"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Status:      u.Status,
		LastLogin:   u.LastLogin,
	}
}
