package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/gorm"
)

// In-memory repository doubles. A fixture wires them together because the
// cross-table queries (exact-member lookup, unseen counting) span stores.

type MockUserRepository struct {
	users map[string]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*models.User)}
}

func (r *MockUserRepository) AddUser(username string) *models.User {
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: "Test " + username,
		Avatar:      "/avatars/" + username + ".jpg",
		Status:      models.StatusOffline,
	}
	r.users[username] = user
	return user
}

func (r *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MockUserRepository) FindAllByUsername(usernames []string) ([]models.User, error) {
	found := make([]models.User, 0, len(usernames))
	for _, username := range usernames {
		if user, ok := r.users[username]; ok {
			found = append(found, *user)
		}
	}
	return found, nil
}

func (r *MockUserRepository) FindAllByStatus(status models.UserStatus) ([]models.User, error) {
	found := make([]models.User, 0)
	for _, user := range r.users {
		if user.Status == status {
			found = append(found, *user)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Username < found[j].Username })
	return found, nil
}

func (r *MockUserRepository) Update(user *models.User) error {
	if _, ok := r.users[user.Username]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *MockUserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	found := make([]models.User, 0)
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Username), query) ||
			strings.Contains(strings.ToLower(user.DisplayName), query) {
			found = append(found, *user)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Username < found[j].Username })
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

type MockMembershipRepository struct {
	memberships []models.Membership
}

func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{}
}

func (r *MockMembershipRepository) FindByRoomID(roomID string) ([]models.Membership, error) {
	found := make([]models.Membership, 0)
	for _, m := range r.memberships {
		if m.RoomID == roomID {
			found = append(found, m)
		}
	}
	return found, nil
}

func (r *MockMembershipRepository) Find(roomID, username string) (*models.Membership, error) {
	for i := range r.memberships {
		if r.memberships[i].RoomID == roomID && r.memberships[i].Username == username {
			copied := r.memberships[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockMembershipRepository) CreateAll(memberships []models.Membership) error {
	for _, m := range memberships {
		if _, err := r.Find(m.RoomID, m.Username); err == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	r.memberships = append(r.memberships, memberships...)
	return nil
}

func (r *MockMembershipRepository) Delete(roomID, username string) error {
	for i := range r.memberships {
		if r.memberships[i].RoomID == roomID && r.memberships[i].Username == username {
			r.memberships = append(r.memberships[:i], r.memberships[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *MockMembershipRepository) SetAdmin(roomID, username string, isAdmin bool) error {
	for i := range r.memberships {
		if r.memberships[i].RoomID == roomID && r.memberships[i].Username == username {
			r.memberships[i].IsAdmin = isAdmin
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *MockMembershipRepository) TouchLastSeen(roomID, username string) (*models.Membership, error) {
	for i := range r.memberships {
		if r.memberships[i].RoomID == roomID && r.memberships[i].Username == username {
			r.memberships[i].LastSeen = time.Now().UTC()
			copied := r.memberships[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type MockRoomRepository struct {
	rooms       map[string]*models.Room
	memberships *MockMembershipRepository
	messages    *MockMessageRepository
}

func (r *MockRoomRepository) CreateWithMemberships(room *models.Room, memberships []models.Membership) error {
	if err := r.memberships.CreateAll(memberships); err != nil {
		return err
	}
	copied := *room
	copied.CreatedAt = time.Now().UTC()
	r.rooms[room.ID] = &copied
	return nil
}

func (r *MockRoomRepository) FindByID(id string) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *MockRoomRepository) FindByExactMembers(members []string) (*models.Room, error) {
	want := make(map[string]struct{}, len(members))
	for _, m := range members {
		want[m] = struct{}{}
	}

	for id, room := range r.rooms {
		rows, _ := r.memberships.FindByRoomID(id)
		if len(rows) != len(want) {
			continue
		}
		match := true
		for _, row := range rows {
			if _, ok := want[row.Username]; !ok {
				match = false
				break
			}
		}
		if match {
			copied := *room
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MockRoomRepository) FindRoomsWithMessages(username string) ([]models.Room, error) {
	type entry struct {
		room   models.Room
		lastAt time.Time
	}
	entries := make([]entry, 0)
	for id, room := range r.rooms {
		if _, err := r.memberships.Find(id, username); err != nil {
			continue
		}
		last, err := r.messages.FindLastByRoomID(id)
		if err != nil {
			continue
		}
		entries = append(entries, entry{room: *room, lastAt: last.SentAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].lastAt.After(entries[j].lastAt) })

	rooms := make([]models.Room, 0, len(entries))
	for _, e := range entries {
		rooms = append(rooms, e.room)
	}
	return rooms, nil
}

func (r *MockRoomRepository) UpdateName(id string, name string) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	room.Name = name
	copied := *room
	return &copied, nil
}

type MockMessageRepository struct {
	messages    []models.Message
	nextID      uint
	memberships *MockMembershipRepository
}

func (r *MockMessageRepository) Create(message *models.Message) error {
	r.nextID++
	message.ID = r.nextID
	message.SentAt = time.Now().UTC()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *MockMessageRepository) FindByRoomID(roomID string) ([]models.Message, error) {
	found := make([]models.Message, 0)
	for _, msg := range r.messages {
		if msg.RoomID == roomID {
			found = append(found, msg)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].SentAt.Equal(found[j].SentAt) {
			return found[i].ID < found[j].ID
		}
		return found[i].SentAt.Before(found[j].SentAt)
	})
	return found, nil
}

func (r *MockMessageRepository) FindLastByRoomID(roomID string) (*models.Message, error) {
	found, _ := r.FindByRoomID(roomID)
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	last := found[len(found)-1]
	return &last, nil
}

func (r *MockMessageRepository) CountUnseen(roomID, viewer string) (int64, error) {
	membership, err := r.memberships.Find(roomID, viewer)
	if err != nil {
		return 0, nil
	}

	var count int64
	for _, msg := range r.messages {
		if msg.RoomID == roomID && msg.SenderUsername != viewer && msg.SentAt.After(membership.LastSeen) {
			count++
		}
	}
	return count, nil
}

// repoFixture wires the doubles together the way the real stores share a
// database.
type repoFixture struct {
	users       *MockUserRepository
	rooms       *MockRoomRepository
	memberships *MockMembershipRepository
	messages    *MockMessageRepository
}

func newRepoFixture() *repoFixture {
	memberships := NewMockMembershipRepository()
	messages := &MockMessageRepository{memberships: memberships}
	rooms := &MockRoomRepository{
		rooms:       make(map[string]*models.Room),
		memberships: memberships,
		messages:    messages,
	}
	return &repoFixture{
		users:       NewMockUserRepository(),
		rooms:       rooms,
		memberships: memberships,
		messages:    messages,
	}
}

type deliveredPayload struct {
	Username string
	Payload  interface{}
}

type broadcastPayload struct {
	Topic   string
	Payload interface{}
}

// MockDeliverer records every push so tests can assert who got what.
type MockDeliverer struct {
	mu         sync.Mutex
	deliveries []deliveredPayload
	broadcasts []broadcastPayload
}

func (d *MockDeliverer) DeliverToUser(username string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deliveries = append(d.deliveries, deliveredPayload{Username: username, Payload: payload})
}

func (d *MockDeliverer) Broadcast(topic string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcasts = append(d.broadcasts, broadcastPayload{Topic: topic, Payload: payload})
}

func (d *MockDeliverer) Deliveries() []deliveredPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]deliveredPayload, len(d.deliveries))
	copy(out, d.deliveries)
	return out
}

func (d *MockDeliverer) Broadcasts() []broadcastPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]broadcastPayload, len(d.broadcasts))
	copy(out, d.broadcasts)
	return out
}

// WaitDeliveries polls until n deliveries arrived or the timeout passes.
// Fan-out runs on its own goroutine, so tests cannot read synchronously.
func (d *MockDeliverer) WaitDeliveries(n int, timeout time.Duration) []deliveredPayload {
	deadline := time.Now().Add(timeout)
	for {
		got := d.Deliveries()
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}
