// Package pebbleadapter keeps cart sessions in a local Pebble database, for
// single-node deployments that want sessions to survive a restart.
package pebbleadapter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"companyhouse/internal/ports"
)

type Sessions struct {
	db *pebble.DB
}

func Open(dir string) (*Sessions, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Sessions{db: db}, nil
}

func (s *Sessions) Close() error { return s.db.Close() }

func (s *Sessions) Session(id string) ports.SessionStore {
	return &session{db: s.db, id: id}
}

type session struct {
	db *pebble.DB
	id string
}

// key separates session id and key with a NUL so ids cannot collide.
func (s *session) key(k string) []byte {
	return []byte(s.id + "\x00" + k)
}

func (s *session) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, closer, err := s.db.Get(s.key(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), true, nil
}

func (s *session) Put(_ context.Context, key string, value []byte) error {
	return s.db.Set(s.key(key), value, pebble.Sync)
}

func (s *session) Delete(_ context.Context, key string) error {
	return s.db.Delete(s.key(key), pebble.Sync)
}
