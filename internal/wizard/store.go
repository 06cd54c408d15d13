package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrSessionNotFound = errors.New("flow session not found or expired")

// Store persists flow sessions under session-scoped keys with a sliding
// TTL. Redis is the primary backend; when the client is nil (Redis down at
// boot) an in-process map keeps single-instance deployments working.
type Store struct {
	redis *redis.Client
	ttl   time.Duration

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	data    []byte
	expires time.Time
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		redis: rdb,
		ttl:   ttl,
		local: make(map[string]localEntry),
	}
}

func (s *Store) key(flow, sessionID string) string {
	return fmt.Sprintf("flow:%s:%s", flow, sessionID)
}

// Save writes the session state and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	key := s.key(st.Flow, sessionID)
	if s.redis != nil {
		return s.redis.Set(ctx, key, data, s.ttl).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[key] = localEntry{data: data, expires: time.Now().Add(s.ttl)}
	return nil
}

// Load restores a session and slides its TTL forward.
func (s *Store) Load(ctx context.Context, flow, sessionID string) (*State, error) {
	key := s.key(flow, sessionID)

	var data []byte
	if s.redis != nil {
		var err error
		data, err = s.redis.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, err
		}
		if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
			log.Printf("[FLOW] Failed to refresh TTL for %s: %v", key, err)
		}
	} else {
		s.mu.Lock()
		entry, ok := s.local[key]
		if ok && time.Now().After(entry.expires) {
			delete(s.local, key)
			ok = false
		}
		if ok {
			entry.expires = time.Now().Add(s.ttl)
			s.local[key] = entry
			data = entry.data
		}
		s.mu.Unlock()
		if !ok {
			return nil, ErrSessionNotFound
		}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Data == nil {
		st.Data = make(map[Step]json.RawMessage)
	}
	if st.Errors == nil {
		st.Errors = make(map[string]string)
	}
	return &st, nil
}

// Delete removes a session, used on cancellation.
func (s *Store) Delete(ctx context.Context, flow, sessionID string) error {
	key := s.key(flow, sessionID)
	if s.redis != nil {
		return s.redis.Del(ctx, key).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, key)
	return nil
}
