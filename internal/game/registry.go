package game

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps at most one Record per user id. Put replaces any existing
// record wholesale. Implementations do not need to serialize calls for the
// same user; the chat adapter guarantees one in-flight handler per user.
type Store interface {
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, userID int64) (*Record, error)
	Remove(ctx context.Context, userID int64) error
}

// MemoryStore is the default in-process store.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[int64]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[int64]*Record)}
}

func (m *MemoryStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrSessionNotFound
	}
	cp := cloneRecord(rec)
	m.mu.Lock()
	m.recs[rec.UserID] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, userID int64) (*Record, error) {
	m.mu.RLock()
	rec, ok := m.recs[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneRecord(rec), nil
}

func (m *MemoryStore) Remove(ctx context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.recs, userID)
	m.mu.Unlock()
	return nil
}

func cloneRecord(rec *Record) *Record {
	cp := *rec
	cp.Moves = append([]string(nil), rec.Moves...)
	return &cp
}

// RedisStore keeps records as JSON values with a TTL, so an abandoned game
// eventually expires on its own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(userID int64) string {
	return "chess:sess:" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrSessionNotFound
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(rec.UserID), raw, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Remove(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, s.key(userID)).Err()
}
