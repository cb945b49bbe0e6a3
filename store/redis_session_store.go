package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

// RedisSessionStore keeps conversation sessions under "<prefix>:session:<user id>".
// Every save refreshes the TTL, so an abandoned flow expires on its own.
type RedisSessionStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisSessionStore(redisClient *RedisClient, ttlHours int) *RedisSessionStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisSessionStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) key(userID int64) string {
	return s.client.generateKey("session", strconv.FormatInt(userID, 10))
}

// GetSession returns the stored session or a fresh idle one.
func (s *RedisSessionStore) GetSession(ctx context.Context, userID int64) (*types.Session, error) {
	var session types.Session
	if err := s.client.Get(ctx, s.key(userID), &session); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return &types.Session{UserID: userID, State: types.StateIdle}, nil
		}
		return nil, err
	}
	session.UserID = userID
	return &session, nil
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session *types.Session) error {
	if session == nil {
		return nil
	}
	if session.State == types.StateIdle && len(session.Data) == 0 {
		return s.ClearSession(ctx, session.UserID)
	}
	session.UpdatedAt = time.Now().UTC()
	return s.client.Set(ctx, s.key(session.UserID), session, s.ttl)
}

func (s *RedisSessionStore) ClearSession(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID))
}
