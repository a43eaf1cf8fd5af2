// internal/domain/auth/store.go
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rememberMeKey  = "rememberMe:"
	userEmailKey   = "userEmail:"
	rememberedTrue = "true"
)

// RedisPreferenceStore keeps the remember-me flag and email as two keys per
// client. A zero ttl keeps them until cleared.
type RedisPreferenceStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewPreferenceStore(redis *redis.Client, ttl time.Duration) PreferenceStore {
	return &RedisPreferenceStore{
		redis: redis,
		ttl:   ttl,
	}
}

// Save writes the flag and the email in one MULTI/EXEC so a reader never
// sees one without the other.
func (s *RedisPreferenceStore) Save(ctx context.Context, clientID string, pref RememberMePreference) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rememberMeKey+clientID, rememberedTrue, s.ttl)
		pipe.Set(ctx, userEmailKey+clientID, pref.Email, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

func (s *RedisPreferenceStore) Load(ctx context.Context, clientID string) (*RememberMePreference, error) {
	vals, err := s.redis.MGet(ctx, rememberMeKey+clientID, userEmailKey+clientID).Result()
	if err != nil {
		return nil, fmt.Errorf("load preference: %w", err)
	}
	if len(vals) != 2 {
		return nil, nil
	}
	flag, _ := vals[0].(string)
	email, _ := vals[1].(string)
	if flag != rememberedTrue || email == "" {
		return nil, nil
	}
	return &RememberMePreference{Email: email}, nil
}

func (s *RedisPreferenceStore) Clear(ctx context.Context, clientID string) error {
	return s.redis.Del(ctx, rememberMeKey+clientID, userEmailKey+clientID).Err()
}

// MemoryPreferenceStore is the single-process fallback when no redis is configured.
type MemoryPreferenceStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{entries: make(map[string]string)}
}

func (s *MemoryPreferenceStore) Save(_ context.Context, clientID string, pref RememberMePreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rememberMeKey+clientID] = rememberedTrue
	s.entries[userEmailKey+clientID] = pref.Email
	return nil
}

func (s *MemoryPreferenceStore) Load(_ context.Context, clientID string) (*RememberMePreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entries[rememberMeKey+clientID] != rememberedTrue {
		return nil, nil
	}
	email := s.entries[userEmailKey+clientID]
	if email == "" {
		return nil, nil
	}
	return &RememberMePreference{Email: email}, nil
}

func (s *MemoryPreferenceStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, rememberMeKey+clientID)
	delete(s.entries, userEmailKey+clientID)
	return nil
}
