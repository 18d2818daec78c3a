package cache

import (
	"fmt"
	"time"
)

const (
	// OnlineUsersTTL matches the hub's pong timeout so a crashed connection
	// ages out of the cache on its own.
	OnlineUsersTTL = 90 * time.Second
)

// PresenceCache mirrors the online-users set in Redis. It is best-effort:
// the database stays the source of truth for presence, and every method is
// a no-op when Redis is not configured.
type PresenceCache struct {
	redis *RedisCache
}

// NewPresenceCache creates a new presence cache
func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

// SetUserOnline adds a user to the online set
func (pc *PresenceCache) SetUserOnline(username string) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", username); err != nil {
		return err
	}

	// Individual key with TTL for auto-expiration
	return pc.redis.Set(fmt.Sprintf("online:%s", username), []byte("1"), OnlineUsersTTL)
}

// SetUserOffline removes a user from the online set
func (pc *PresenceCache) SetUserOffline(username string) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", username); err != nil {
		return err
	}
	return pc.redis.Delete(fmt.Sprintf("online:%s", username))
}

// IsUserOnline checks the per-user TTL key
func (pc *PresenceCache) IsUserOnline(username string) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("online:%s", username))
}

// GetOnlineUsers returns all usernames in the online set
func (pc *PresenceCache) GetOnlineUsers() ([]string, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	return pc.redis.SetMembers("online:users")
}

// RefreshUserOnline extends the TTL for an online user
func (pc *PresenceCache) RefreshUserOnline(username string) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(fmt.Sprintf("online:%s", username), []byte("1"), OnlineUsersTTL)
}
