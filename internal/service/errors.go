package service

import "errors"

// Business errors; handlers map these to HTTP statuses (not-found -> 404,
// conflict -> 409, invalid input -> 400).
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMemberNotFound = errors.New("member not found in this room")
	ErrUserNotFound   = errors.New("user not found")
	ErrMemberExists   = errors.New("member already in this room")
	ErrInvalidInput   = errors.New("invalid input")
)
