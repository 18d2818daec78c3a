package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"gorm.io/gorm"
)

// MembershipService owns the membership rows inside a room: adding and
// removing members, the admin flag and the last-seen watermark.
type MembershipService struct {
	membershipRepo repository.MembershipRepositoryInterface
	roomRepo       repository.RoomRepositoryInterface
	userRepo       repository.UserRepositoryInterface
}

func NewMembershipService(
	membershipRepo repository.MembershipRepositoryInterface,
	roomRepo repository.RoomRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		roomRepo:       roomRepo,
		userRepo:       userRepo,
	}
}

type AddMemberInput struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *MembershipService) ListMembers(roomID string) ([]models.Membership, error) {
	return s.membershipRepo.FindByRoomID(roomID)
}

// AddMembers inserts new membership rows. A (room, user) pair that already
// exists fails the whole call with ErrMemberExists. New members start with a
// fresh last-seen watermark: removing and re-adding a member never resurrects
// the old one.
func (s *MembershipService) AddMembers(roomID string, inputs []AddMemberInput) ([]models.Membership, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty member list", ErrInvalidInput)
	}

	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	for _, input := range inputs {
		if _, err := s.userRepo.FindByUsername(input.Username); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUserNotFound, input.Username)
			}
			return nil, err
		}
		if _, err := s.membershipRepo.Find(roomID, input.Username); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrMemberExists, input.Username)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	memberships := make([]models.Membership, 0, len(inputs))
	for _, input := range inputs {
		memberships = append(memberships, models.Membership{
			RoomID:   roomID,
			Username: input.Username,
			IsAdmin:  input.IsAdmin,
			LastSeen: now,
		})
	}

	if err := s.membershipRepo.CreateAll(memberships); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrMemberExists
		}
		return nil, err
	}
	return memberships, nil
}

// RemoveMember deletes one membership row. Historic messages from that member
// are untouched.
func (s *MembershipService) RemoveMember(roomID, username string) (bool, error) {
	if err := s.membershipRepo.Delete(roomID, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrMemberNotFound
		}
		return false, err
	}
	return true, nil
}

// SetAdmin is idempotent: assigning the value a member already has is a
// no-op success.
func (s *MembershipService) SetAdmin(roomID, username string, isAdmin bool) (*models.Membership, error) {
	if err := s.membershipRepo.SetAdmin(roomID, username, isAdmin); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return s.membershipRepo.Find(roomID, username)
}

// TouchLastSeen moves the viewer's watermark to now. This is the only
// mutation path for unseen-count accounting.
func (s *MembershipService) TouchLastSeen(roomID, username string) (*models.Membership, error) {
	membership, err := s.membershipRepo.TouchLastSeen(roomID, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return membership, nil
}

// isDuplicateKey catches unique-constraint violations raced past the
// pre-insert existence check.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
