// Package cache persists analysis results on disk, keyed by the analysed
// file set's fingerprint.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

const entryExt = ".json"

// Store is a directory of JSON result entries. A nil *Store is a valid
// cache that never hits and discards writes.
type Store struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
	now func() time.Time
}

type record struct {
	Key     string          `json:"key"`
	Written time.Time       `json:"written"`
	Data    json.RawMessage `json:"data"`
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires entries older than ttl. Zero keeps them until cleared.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithFs stores entries on fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) { s.fs = fsys }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open prepares dir for entries, creating it when missing.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{fs: afero.NewOsFs(), dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the entry directory.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Key derives a key from an analysis name, a file set fingerprint and any
// parameters that change the result. The analysis name stays readable.
func Key(analysis, fingerprint string, params ...string) string {
	h := blake3.New()
	_, _ = h.WriteString(analysis)
	_, _ = h.WriteString("\x00" + fingerprint)
	for _, p := range params {
		_, _ = h.WriteString("\x00" + p)
	}
	return analysis + ":" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the raw JSON stored under key. Expired entries are removed.
func (s *Store) Get(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	name := s.entryPath(key)
	raw, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, false
	}
	var rec record
	if json.Unmarshal(raw, &rec) != nil || rec.Key != key {
		return nil, false
	}
	if s.expired(rec.Written) {
		_ = s.fs.Remove(name)
		return nil, false
	}
	return rec.Data, true
}

// Put encodes v as JSON under key.
func (s *Store) Put(key string, v any) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(record{Key: key, Written: s.now(), Data: data})
	if err != nil {
		return err
	}

	// Readers must never observe a half-written entry.
	tmp, err := afero.TempFile(s.fs, s.dir, ".entry-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(raw)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(tmp.Name())
		return err
	}
	return s.fs.Rename(tmp.Name(), s.entryPath(key))
}

// Delete removes the entry under key. A missing entry is not an error.
func (s *Store) Delete(key string) error {
	if s == nil {
		return nil
	}
	if err := s.fs.Remove(s.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and leaves an empty directory behind.
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.fs.MkdirAll(s.dir, 0o755)
}

// Stats summarises the entries on disk.
type Stats struct {
	Entries int            `json:"entries"`
	Bytes   int64          `json:"bytes"`
	Expired int            `json:"expired"`
	ByName  map[string]int `json:"by_analysis,omitempty"`
	Oldest  time.Duration  `json:"oldest"`
}

// Stats walks the directory. Age is taken from file modification times.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if s == nil {
		return st, nil
	}
	infos, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	for _, info := range infos {
		if info.IsDir() || path.Ext(info.Name()) != entryExt {
			continue
		}
		st.Entries++
		st.Bytes += info.Size()
		if s.expired(info.ModTime()) {
			st.Expired++
		}
		if age := s.now().Sub(info.ModTime()); age > st.Oldest {
			st.Oldest = age
		}
		name, _, _ := strings.Cut(info.Name(), "-")
		if st.ByName == nil {
			st.ByName = make(map[string]int)
		}
		st.ByName[name]++
	}
	return st, nil
}

func (s *Store) expired(written time.Time) bool {
	return s.ttl > 0 && s.now().Sub(written) > s.ttl
}

// entryPath names the file for key: a readable analysis prefix and a hash.
func (s *Store) entryPath(key string) string {
	name, _, _ := strings.Cut(key, ":")
	sum := blake3.Sum256([]byte(key))
	return s.dir + string(os.PathSeparator) + clean(name) + "-" + hex.EncodeToString(sum[:16]) + entryExt
}

func clean(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}
