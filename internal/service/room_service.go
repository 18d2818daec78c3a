package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"gorm.io/gorm"
)

// RoomService resolves and creates rooms. Lookup never creates: callers that
// want find-or-create semantics issue the two calls themselves.
type RoomService struct {
	roomRepo       repository.RoomRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	messageRepo    repository.MessageRepositoryInterface
	userRepo       repository.UserRepositoryInterface
}

func NewRoomService(
	roomRepo repository.RoomRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *RoomService {
	return &RoomService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		userRepo:       userRepo,
	}
}

// FindByMembers matches a room whose membership set is exactly the requested
// set, regardless of order. Requesting {A,B} does not match a room {A,B,C}.
func (s *RoomService) FindByMembers(members []string) (*models.RoomWithMembers, error) {
	members = dedupe(members)
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty member list", ErrInvalidInput)
	}

	room, err := s.roomRepo.FindByExactMembers(members)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.withMembers(room)
}

// Create persists a room and one membership per listed user atomically. The
// creator's membership is admin; everyone starts with last-seen = creation
// time so nobody reports unseen messages sent before they joined. Kind is
// group iff more than two members, and never changes afterwards.
func (s *RoomService) Create(members []string, creator string) (*models.RoomWithMembers, error) {
	members = dedupe(members)
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty member list", ErrInvalidInput)
	}
	if !contains(members, creator) {
		return nil, fmt.Errorf("%w: creator must be a member", ErrInvalidInput)
	}

	users, err := s.userRepo.FindAllByUsername(members)
	if err != nil {
		return nil, err
	}
	if len(users) != len(members) {
		return nil, ErrUserNotFound
	}

	kind := models.RoomDirect
	if len(members) > 2 {
		kind = models.RoomGroup
	}

	room := &models.Room{
		ID:              uuid.NewString(),
		Kind:            kind,
		CreatorUsername: creator,
	}

	now := time.Now().UTC()
	memberships := make([]models.Membership, 0, len(members))
	for _, username := range members {
		memberships = append(memberships, models.Membership{
			RoomID:   room.ID,
			Username: username,
			IsAdmin:  username == creator,
			LastSeen: now,
		})
	}

	if err := s.roomRepo.CreateWithMemberships(room, memberships); err != nil {
		return nil, err
	}
	return s.withMembers(room)
}

func (s *RoomService) GetByID(roomID string) (*models.RoomWithMembers, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.withMembers(room)
}

// RenameGroup updates the display name. Who may rename is a boundary-layer
// policy; the service itself does not restrict it.
func (s *RoomService) RenameGroup(roomID, name string) (*models.Room, error) {
	room, err := s.roomRepo.UpdateName(roomID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// ListUserRooms returns the viewer's rooms that have at least one message,
// most recent activity first. Each summary carries the last message, the
// viewer's unseen count (always recomputed, never cached) and, for direct
// rooms, the counterpart's avatar as the room avatar.
func (s *RoomService) ListUserRooms(username string) ([]models.RoomSummary, error) {
	rooms, err := s.roomRepo.FindRoomsWithMessages(username)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		members, err := s.memberResponses(room.ID)
		if err != nil {
			return nil, err
		}

		unseen, err := s.messageRepo.CountUnseen(room.ID, username)
		if err != nil {
			return nil, err
		}

		summary := models.RoomSummary{
			Room:        room,
			Members:     members,
			UnseenCount: unseen,
		}

		if last, err := s.messageRepo.FindLastByRoomID(room.ID); err == nil {
			resp := last.ToResponse()
			summary.LastMessage = &resp
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if room.Kind == models.RoomDirect {
			for _, member := range members {
				if member.Username != username {
					summary.Avatar = member.Avatar
					break
				}
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *RoomService) withMembers(room *models.Room) (*models.RoomWithMembers, error) {
	members, err := s.memberResponses(room.ID)
	if err != nil {
		return nil, err
	}
	return &models.RoomWithMembers{Room: *room, Members: members}, nil
}

func (s *RoomService) memberResponses(roomID string) ([]models.MembershipResponse, error) {
	memberships, err := s.membershipRepo.FindByRoomID(roomID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		resp := m.ToResponse()
		if user, err := s.userRepo.FindByUsername(m.Username); err == nil {
			resp.Avatar = user.Avatar
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func dedupe(members []string) []string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func contains(members []string, username string) bool {
	for _, m := range members {
		if m == username {
			return true
		}
	}
	return false
}
