package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Create(ctx context.Context, userName string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD" json:"-"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB" default:"0"`
	Prefix   string `yaml:"prefix" envconfig:"REDIS_SESSION_PREFIX" default:"session"`
}

type redisSessionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore pings the server before returning the store.
func NewRedisSessionStore(ctx context.Context, cfg RedisConfig, ttl time.Duration) (SessionStore, func() error, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, errors.Wrap(err, "redis ping")
	}
	return &redisSessionStore{rdb: rdb, prefix: cfg.Prefix, ttl: ttl}, rdb.Close, nil
}

func (s *redisSessionStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *redisSessionStore) Create(ctx context.Context, userName string) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, s.key(token), userName, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "redis set")
	}
	return token, nil
}

func (s *redisSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	userName, err := s.rdb.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", errors.Wrap(err, "redis get")
	}
	return userName, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, s.key(token)).Err()
}

type memorySession struct {
	userName  string
	expiresAt time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

// NewMemorySessionStore keeps sessions in process; used when no redis is configured.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (s *memorySessionStore) Create(_ context.Context, userName string) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userName: userName, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

func (s *memorySessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return "", ErrSessionNotFound
	}
	return sess.userName, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
