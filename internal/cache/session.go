package cache

import (
	"context"
	"sync"

	"companyhouse/internal/ports"
)

// Sessions keeps session data in process memory, keyed by session id.
type Sessions struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func NewSessions() *Sessions {
	return &Sessions{data: make(map[string]map[string][]byte)}
}

func (s *Sessions) Session(id string) ports.SessionStore {
	return &sessionStore{parent: s, id: id}
}

type sessionStore struct {
	parent *Sessions
	id     string
}

func (s *sessionStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	v, ok := s.parent.data[s.id][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *sessionStore) Put(_ context.Context, key string, value []byte) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	bucket, ok := s.parent.data[s.id]
	if !ok {
		bucket = make(map[string][]byte)
		s.parent.data[s.id] = bucket
	}
	bucket[key] = append([]byte(nil), value...)
	return nil
}

func (s *sessionStore) Delete(_ context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.data[s.id], key)
	return nil
}
