package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps opaque bearer tokens that resolve to a user id.
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Client: client, TTL: ttl}
}

func (s *RedisSessionStore) SessionKey(token string) string {
	return "session:" + token
}

func (s *RedisSessionStore) Issue(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	if err := s.Client.Set(ctx, s.SessionKey(token), strconv.Itoa(userID), s.TTL).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns domain.ErrUnauthenticated for unknown and expired tokens alike.
func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, domain.ErrUnauthenticated
	}
	raw, err := s.Client.Get(ctx, s.SessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("load session: %w", err)
	}
	userID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrUnauthenticated
	}
	return userID, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	return s.Client.Del(ctx, s.SessionKey(token)).Err()
}

// RedisInvitationStore keeps staff invitations until they expire.
type RedisInvitationStore struct {
	Client *redis.Client
}

func NewRedisInvitationStore(client *redis.Client) *RedisInvitationStore {
	return &RedisInvitationStore{Client: client}
}

func (s *RedisInvitationStore) InvitationKey(token string) string {
	return "invitation:" + token
}

func (s *RedisInvitationStore) Save(ctx context.Context, inv *domain.Invitation) error {
	ttl := time.Until(inv.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: invitation already expired", domain.ErrInvalidRequest)
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.InvitationKey(inv.Token), payload, ttl).Err()
}

func (s *RedisInvitationStore) Get(ctx context.Context, token string) (*domain.Invitation, error) {
	raw, err := s.Client.Get(ctx, s.InvitationKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("invitation: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	var inv domain.Invitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decode invitation: %w", err)
	}
	return &inv, nil
}

// RedisEventMarker remembers processed payment events for TTL.
type RedisEventMarker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisEventMarker(client *redis.Client, ttl time.Duration) *RedisEventMarker {
	return &RedisEventMarker{Client: client, TTL: ttl}
}

func (m *RedisEventMarker) EventKey(eventID string) string {
	return "payment_event:" + eventID
}

func (m *RedisEventMarker) Seen(ctx context.Context, eventID string) (bool, error) {
	res, err := m.Client.Exists(ctx, m.EventKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

func (m *RedisEventMarker) Mark(ctx context.Context, eventID string) error {
	return m.Client.Set(ctx, m.EventKey(eventID), "1", m.TTL).Err()
}
