package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeMissing is returned by a CodeStore when a key is absent or expired.
var ErrCodeMissing = errors.New("auth: code not found")

// CodeStore keeps short-lived secrets: verification codes, their failed
// attempt counters and password reset tokens.
type CodeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	// Take reads and deletes the key in one step.
	Take(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	// Incr bumps a counter, setting ttl when the counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCodeStore backs codes with Redis key expiry.
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	if client == nil {
		panic("auth: redis client cannot be nil")
	}
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("auth: store code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeMissing
	}
	if err != nil {
		return "", fmt.Errorf("auth: read code: %w", err)
	}
	return v, nil
}

func (s *RedisCodeStore) Take(ctx context.Context, key string) (string, error) {
	v, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeMissing
	}
	if err != nil {
		return "", fmt.Errorf("auth: take code: %w", err)
	}
	return v, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("auth: delete code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("auth: count attempt: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("auth: expire attempt counter: %w", err)
		}
	}
	return n, nil
}

// MemoryCodeStore is an in-process CodeStore for development and tests.
type MemoryCodeStore struct {
	mu      sync.Mutex
	entries map[string]memoryCode
	now     func() time.Time
}

type memoryCode struct {
	value   string
	expires time.Time
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{entries: map[string]memoryCode{}, now: time.Now}
}

func (s *MemoryCodeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryCode{value: value, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return "", ErrCodeMissing
	}
	return e.value, nil
}

func (s *MemoryCodeStore) Take(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return "", ErrCodeMissing
	}
	delete(s.entries, key)
	return e.value, nil
}

func (s *MemoryCodeStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *MemoryCodeStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		e = memoryCode{value: "0", expires: s.now().Add(ttl)}
	}
	n, _ := strconv.ParseInt(e.value, 10, 64)
	n++
	e.value = strconv.FormatInt(n, 10)
	s.entries[key] = e
	return n, nil
}

func (s *MemoryCodeStore) live(key string) (memoryCode, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryCode{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return memoryCode{}, false
	}
	return e, true
}

// newVerificationCode returns a uniformly random six-digit code.
func newVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("auth: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
