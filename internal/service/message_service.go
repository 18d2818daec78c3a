package service

import (
	"errors"
	"fmt"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"gorm.io/gorm"
)

// MessageService is the append-only message log plus the unseen accountant.
type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	roomRepo    repository.RoomRepositoryInterface
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	roomRepo repository.RoomRepositoryInterface,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
	}
}

// Append persists a message. The repository stamps sent-at from the server
// clock; caller timestamps are never trusted.
func (s *MessageService) Append(roomID, sender, body string) (*models.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty message body", ErrInvalidInput)
	}

	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	message := &models.Message{
		RoomID:         roomID,
		SenderUsername: sender,
		Body:           body,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListByRoom returns the full history ascending by sent-at, ties broken by
// insertion order. History is expected to be bounded per room; pagination is
// deliberately absent.
func (s *MessageService) ListByRoom(roomID string) ([]models.Message, error) {
	return s.messageRepo.FindByRoomID(roomID)
}

// LastMessage returns nil without error when the room has no messages.
func (s *MessageService) LastMessage(roomID string) (*models.Message, error) {
	message, err := s.messageRepo.FindLastByRoomID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return message, nil
}

// CountUnseen is always recomputed from storage so it agrees with the latest
// TouchLastSeen. A non-member viewer gets 0, not an error.
func (s *MessageService) CountUnseen(roomID, viewer string) (int64, error) {
	return s.messageRepo.CountUnseen(roomID, viewer)
}
