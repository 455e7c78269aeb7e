package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists the session record. Implementations must apply writes
// atomically: SetSession replaces the whole record, Clear removes it, and
// Snapshot returns a consistent view of all fields. Mutating callers follow a
// read-modify-write discipline through Snapshot rather than patching fields.
type TokenStore interface {
	Snapshot(ctx context.Context) (Session, error)
	AccessToken(ctx context.Context) (string, error)
	Role(ctx context.Context) (Role, error)
	CachedProfile(ctx context.Context) (*Profile, error)
	SetSession(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process memory. Zero value is ready to use.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Snapshot(context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.clone(), nil
}

func (m *MemoryStore) AccessToken(ctx context.Context) (string, error) {
	s, _ := m.Snapshot(ctx)
	return s.AccessToken, nil
}

func (m *MemoryStore) Role(ctx context.Context) (Role, error) {
	s, _ := m.Snapshot(ctx)
	return s.Role, nil
}

func (m *MemoryStore) CachedProfile(ctx context.Context) (*Profile, error) {
	s, _ := m.Snapshot(ctx)
	return s.Profile, nil
}

func (m *MemoryStore) SetSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s.clone()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	return nil
}

func (s Session) clone() Session {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return out
}

// FileStore persists the session as a JSON file, the desktop analog of
// browser local storage. Writes go through a temp file and rename so a crash
// never leaves a torn record.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Snapshot(context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileStore) read() (Session, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// Corrupt file reads as signed out.
		return Session{}, nil
	}
	return s, nil
}

func (f *FileStore) AccessToken(ctx context.Context) (string, error) {
	s, err := f.Snapshot(ctx)
	return s.AccessToken, err
}

func (f *FileStore) Role(ctx context.Context) (Role, error) {
	s, err := f.Snapshot(ctx)
	return s.Role, err
}

func (f *FileStore) CachedProfile(ctx context.Context) (*Profile, error) {
	s, err := f.Snapshot(ctx)
	return s.Profile, err
}

func (f *FileStore) SetSession(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStore persists the session under a single redis key, for deployments
// where several processes share one signed-in session.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store writing to the given key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "gyansort:session"
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Snapshot(ctx context.Context) (Session, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, nil
	}
	return s, nil
}

func (r *RedisStore) AccessToken(ctx context.Context) (string, error) {
	s, err := r.Snapshot(ctx)
	return s.AccessToken, err
}

func (r *RedisStore) Role(ctx context.Context) (Role, error) {
	s, err := r.Snapshot(ctx)
	return s.Role, err
}

func (r *RedisStore) CachedProfile(ctx context.Context) (*Profile, error) {
	s, err := r.Snapshot(ctx)
	return s.Profile, err
}

func (r *RedisStore) SetSession(ctx context.Context, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, raw, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
