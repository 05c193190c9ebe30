package metadata

import (
	"sync"
	"sync/atomic"

	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/source"
)

// Entry is the extracted metadata of one unit.
type Entry struct {
	Unit              *source.Unit
	Exports           []models.ExportRecord
	Imports           []models.ImportRecord
	LocalFunctions    []models.LocalDeclaration
	LocalVariables    []models.LocalDeclaration
	UsedIdentifiers   models.IdentifierSet
	ComponentProps    []models.ComponentPropInfo
	FunctionArguments []models.FunctionArgumentInfo
}

// Path returns the unit path.
func (e *Entry) Path() string { return e.Unit.Path }

func newEntry(u *source.Unit, m *FileMetadata) *Entry {
	return &Entry{
		Unit:              u,
		Exports:           m.Exports,
		Imports:           m.Imports,
		LocalFunctions:    m.LocalFunctions,
		LocalVariables:    m.LocalVariables,
		UsedIdentifiers:   m.UsedIdentifiers,
		ComponentProps:    m.ComponentProps,
		FunctionArguments: m.FunctionArguments,
	}
}

type entryKey struct {
	path string
	hash string
}

// Cache holds the extraction results for one file set. Building with a
// different set discards everything first.
type Cache struct {
	mu          sync.RWMutex
	fingerprint string
	entries     []*Entry
	byKey       map[entryKey]*Entry
	extractions atomic.Int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{byKey: make(map[entryKey]*Entry)}
}

// Build extracts every unit of set exactly once and returns the entries in
// set order. Calling Build again with the same set returns the cached
// entries.
func (c *Cache) Build(set *source.Set) []*Entry {
	fp := set.Fingerprint()

	c.mu.RLock()
	if c.entries != nil && c.fingerprint == fp {
		entries := c.entries
		c.mu.RUnlock()
		return entries
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries != nil && c.fingerprint == fp {
		return c.entries
	}

	units := set.Units()
	entries := make([]*Entry, 0, len(units))
	byKey := make(map[entryKey]*Entry, len(units))
	for _, u := range units {
		e := newEntry(u, Extract(u))
		c.extractions.Add(1)
		entries = append(entries, e)
		byKey[entryKey{u.Path, u.Hash}] = e
	}

	c.fingerprint = fp
	c.entries = entries
	c.byKey = byKey
	return entries
}

// Entries returns the entries of the last build, or nil.
func (c *Cache) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// Lookup returns the entry for u. It matches on both path and content hash,
// so a stale unit with the same path is not found.
func (c *Cache) Lookup(u *source.Unit) (*Entry, bool) {
	if u == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byKey[entryKey{u.Path, u.Hash}]
	return e, ok
}

// Invalidate discards every entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = ""
	c.entries = nil
	c.byKey = make(map[entryKey]*Entry)
}

// Extractions returns how many times the extraction layer has run.
func (c *Cache) Extractions() int64 {
	return c.extractions.Load()
}
