package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

// Store reads and writes the session registry file. Opened once per
// invocation; every mutation is a locked read-modify-write with an atomic
// rename, so a crashed process never leaves a torn registry behind.
type Store struct {
	path string
	lock *flock.Flock
}

func OpenStore(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session lock directory: %w", err)
	}
	return &Store{path: path, lock: flock.New(lockPath)}, nil
}

// Load returns the full registry. A missing file is an empty registry.
func (s *Store) Load() (map[string]Session, error) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Session{}, nil
		}
		return nil, clierr.Wrap(clierr.CodeInternal, "read session registry", err)
	}
	if len(buf) == 0 {
		return map[string]Session{}, nil
	}
	var out map[string]Session
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "parse session registry", err)
	}
	if out == nil {
		out = map[string]Session{}
	}
	return out, nil
}

// Get returns the session for a topic, or the first session when topic is
// empty and exactly one pairing exists.
func (s *Store) Get(topic string) (Session, error) {
	sessions, err := s.Load()
	if err != nil {
		return Session{}, err
	}
	if topic == "" {
		if len(sessions) == 1 {
			for _, sess := range sessions {
				return sess, nil
			}
		}
		if len(sessions) == 0 {
			return Session{}, clierr.New(clierr.CodeNoSession, "no wallet session; run pair first")
		}
		return Session{}, clierr.New(clierr.CodeUsage, "multiple sessions exist; pass --topic")
	}
	sess, ok := sessions[topic]
	if !ok {
		return Session{}, clierr.New(clierr.CodeNoSession, fmt.Sprintf("no session with topic %s", topic))
	}
	return sess, nil
}

// List returns all sessions ordered by creation time.
func (s *Store) List() ([]Session, error) {
	sessions, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Save upserts one session under its topic.
func (s *Store) Save(sess Session) error {
	return s.mutate(func(all map[string]Session) {
		all[sess.Topic] = sess
	})
}

// Delete removes a topic. Deleting an absent topic is not an error.
func (s *Store) Delete(topic string) error {
	return s.mutate(func(all map[string]Session) {
		delete(all, topic)
	})
}

func (s *Store) mutate(fn func(map[string]Session)) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "lock session registry", err)
	}
	if !locked {
		return clierr.New(clierr.CodeInternal, "lock session registry: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	sessions, err := s.Load()
	if err != nil {
		return err
	}
	fn(sessions)

	buf, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode session registry", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.json.tmp")
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "create temp registry", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return clierr.Wrap(clierr.CodeInternal, "write temp registry", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return clierr.Wrap(clierr.CodeInternal, "close temp registry", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return clierr.Wrap(clierr.CodeInternal, "chmod temp registry", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return clierr.Wrap(clierr.CodeInternal, "replace session registry", err)
	}
	return nil
}
