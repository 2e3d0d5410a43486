package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

const (
	// DefaultSessionTTL: время жизни данных сессии без активности.
	DefaultSessionTTL = 30 * time.Minute
	opTimeout         = 2 * time.Second
)

// SessionStorage хранит данные сессий в Redis с TTL, продлеваемым при записи.
type SessionStorage struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionStorage создаёт хранилище сессий поверх клиента Redis.
func NewSessionStorage(client *goredis.Client, ttl time.Duration) *SessionStorage {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStorage{client: client, ttl: ttl}
}

// ForSession возвращает KVStore, ключи которого изолированы префиксом сессии.
func (s *SessionStorage) ForSession(sessionID string) domain.KVStore {
	return &sessionStore{client: s.client, ttl: s.ttl, sessionID: sessionID}
}

// Ping проверяет доступность Redis.
func (s *SessionStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

type sessionStore struct {
	client    *goredis.Client
	ttl       time.Duration
	sessionID string
}

func (s *sessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, sessionKey(s.sessionID, key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return value, true, nil
}

func (s *sessionStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, sessionKey(s.sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *sessionStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, sessionKey(s.sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

var _ domain.SessionStorage = (*SessionStorage)(nil)
