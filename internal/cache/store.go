package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-obra/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Store is the persistent key/value cache with per-entry expiry.
// Entries survive restarts in a local sqlite file. Every storage
// failure is logged and absorbed: a broken cache file degrades the
// store to a no-op, it never takes the service down with it.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time

	onRefresh RefreshListener
}

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key       TEXT PRIMARY KEY,
	data      BLOB NOT NULL,
	timestamp INTEGER NOT NULL,
	expiry    INTEGER NOT NULL
)`

// OpenStore opens (or creates) the cache file at path.
// A store that failed to open is still usable, it just misses on every read.
func OpenStore(path string, log *zap.Logger) *Store {
	s := &Store{log: log, now: time.Now}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Warn("cache storage unavailable, running without cache", zap.Error(err))
		return s
	}
	if _, err := db.Exec(schema); err != nil {
		log.Warn("cache schema init failed, running without cache", zap.Error(err))
		db.Close()
		return s
	}

	s.db = db
	return s
}

// NewStore wires the cache store into the fx lifecycle
func NewStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *Store {
	s := OpenStore(cfg.CachePath, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
	return s
}

// SetRefreshListener registers the receiver of background refresh events
func (s *Store) SetRefreshListener(l RefreshListener) {
	s.onRefresh = l
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Set stores value under key with the given TTL. Write failures are logged and dropped.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if s.db == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, data, timestamp, expiry) VALUES (?, ?, ?, ?)`,
		key, data, s.now().UnixMilli(), ttl.Milliseconds(),
	)
	if err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Get loads the entry for key into dest. Not-found and expired are
// indistinguishable to the caller; an expired entry is deleted on read.
func (s *Store) Get(key string, dest any) bool {
	age, ttl, ok := s.peek(key, dest)
	if !ok {
		return false
	}
	if age > ttl {
		s.Remove(key)
		return false
	}
	return true
}

// peek reads the entry regardless of expiry and reports its age and TTL.
// Undecodable rows are dropped and reported as absent.
func (s *Store) peek(key string, dest any) (age, ttl time.Duration, ok bool) {
	if s.db == nil {
		return 0, 0, false
	}
	var data []byte
	var timestamp, expiry int64
	err := s.db.QueryRow(
		`SELECT data, timestamp, expiry FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &timestamp, &expiry)
	if err == sql.ErrNoRows {
		return 0, 0, false
	}
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return 0, 0, false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.Warn("cache decode failed, dropping entry", zap.String("key", key), zap.Error(err))
		s.Remove(key)
		return 0, 0, false
	}
	age = s.now().Sub(time.UnixMilli(timestamp))
	ttl = time.Duration(expiry) * time.Millisecond
	return age, ttl, true
}

// Remove deletes a single entry
func (s *Store) Remove(key string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		s.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear empties the whole cache
func (s *Store) Clear() {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		s.log.Warn("cache clear failed", zap.Error(err))
	}
}

func (s *Store) notifyRefresh(key string) {
	if s.onRefresh != nil {
		s.onRefresh.CacheRefreshed(key, s.now())
	}
}
