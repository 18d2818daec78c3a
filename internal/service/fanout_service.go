package service

import (
	"log"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
)

// Deliverer is the external broker capability: best-effort push to all live
// subscribers of a username, or to all subscribers of a shared topic. Both
// are fire-and-forget from the core's perspective.
type Deliverer interface {
	DeliverToUser(username string, payload interface{})
	Broadcast(topic string, payload interface{})
}

// FanoutService orchestrates message delivery: persist first, then push the
// stored message to every current member's private channel.
type FanoutService struct {
	messageService *MessageService
	membershipRepo repository.MembershipRepositoryInterface
	deliverer      Deliverer
}

func NewFanoutService(
	messageService *MessageService,
	membershipRepo repository.MembershipRepositoryInterface,
	deliverer Deliverer,
) *FanoutService {
	return &FanoutService{
		messageService: messageService,
		membershipRepo: membershipRepo,
		deliverer:      deliverer,
	}
}

// SendMessage returns as soon as the message is durably stored; delivery runs
// in the background so caller latency does not scale with member count. The
// membership snapshot is read after the commit: a member removed in that
// window misses the push, one added may or may not get it — either way the
// message is durably queryable.
func (s *FanoutService) SendMessage(roomID, sender, body string) (*models.Message, error) {
	message, err := s.messageService.Append(roomID, sender, body)
	if err != nil {
		return nil, err
	}

	go s.fanOut(message)

	return message, nil
}

func (s *FanoutService) fanOut(message *models.Message) {
	members, err := s.membershipRepo.FindByRoomID(message.RoomID)
	if err != nil {
		// The message is already stored; a missed push is recovered by the
		// next room fetch, so log and move on.
		log.Printf("fanout: loading members of room %s failed: %v", message.RoomID, err)
		return
	}

	payload := message.ToResponse()
	for _, member := range members {
		s.deliverer.DeliverToUser(member.Username, payload)
	}
}
