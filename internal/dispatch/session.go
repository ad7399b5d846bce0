// internal/dispatch/session.go
package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"insight-service/internal/common/logger"
	"insight-service/internal/models"
)

// sessionNamespace seeds the deterministic session-key derivation.
var sessionNamespace = uuid.MustParse("9f2c1f6e-4b7a-4f1e-8c59-2d3a61f0a7b4")

// SessionKey derives the stable key for a user/listing pair. The same pair
// always yields the same key.
func SessionKey(userID, listingID string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(userID+":"+listingID)).String()
}

// SessionStore tracks conversation sessions per user/listing pair.
// GetOrCreate is idempotent: repeated calls with the same pair return the
// same key and never create duplicate entries.
type SessionStore interface {
	GetOrCreate(ctx context.Context, userID, listingID string) (*models.Session, error)
}

// MemorySessionStore keeps sessions in process memory. Entries live until
// restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) GetOrCreate(ctx context.Context, userID, listingID string) (*models.Session, error) {
	key := SessionKey(userID, listingID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[key]; ok {
		session.LastActivity = s.now().UTC()
		copied := *session
		return &copied, nil
	}

	now := s.now().UTC()
	session := &models.Session{
		Key:          key,
		UserID:       userID,
		ListingID:    listingID,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[key] = session
	copied := *session
	return &copied, nil
}

// Len reports the number of distinct sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RedisSessionStore keeps sessions in Redis so they survive restarts and are
// shared across instances. A zero TTL keeps entries indefinitely.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

func sessionRedisKey(key string) string {
	return "session:" + key
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, userID, listingID string) (*models.Session, error) {
	key := SessionKey(userID, listingID)
	redisKey := sessionRedisKey(key)

	raw, err := s.client.Get(ctx, redisKey).Result()
	if err == nil {
		var session models.Session
		if unmarshalErr := json.Unmarshal([]byte(raw), &session); unmarshalErr == nil {
			session.LastActivity = s.now().UTC()
			s.persist(ctx, redisKey, &session)
			return &session, nil
		}
		s.logger.Warn("dropping unreadable session entry", map[string]interface{}{"key": key})
	} else if err != redis.Nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &models.Session{
		Key:          key,
		UserID:       userID,
		ListingID:    listingID,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.persist(ctx, redisKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *RedisSessionStore) persist(ctx context.Context, redisKey string, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey, data, s.ttl).Err()
}
