package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	tt "github.com/gnolang/jsxlint/internal/types"
)

const (
	// increment when the on-disk layout changes
	cacheSchemaVersion uint16 = 1

	cacheFileName   = "lint_cache.mp"
	DefaultCacheAge = 7 * 24 * time.Hour
)

type CacheEntry struct {
	Hash         string
	Issues       []tt.Issue
	CreatedAt    time.Time
	LastAccessed time.Time
}

type cachePayload struct {
	Schema       uint16
	Dependencies map[string]string
	Entries      map[string]CacheEntry
}

// Cache keeps lint results of files whose content has not changed.
// It is safe for concurrent use; changes are persisted by Save.
type Cache struct {
	CacheDir         string
	entries          map[string]CacheEntry
	mutex            sync.RWMutex
	maxAge           time.Duration
	dependencyFiles  []string
	dependencyHashes map[string]string
	dirty            bool
}

// NewCache opens the cache stored in cacheDir, creating the directory if
// needed. Entries are dropped when any of the dependency files (such as
// the configuration) changed since they were stored.
func NewCache(cacheDir string, dependencyFiles ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		entries:          make(map[string]CacheEntry),
		maxAge:           DefaultCacheAge,
		dependencyFiles:  dependencyFiles,
		dependencyHashes: make(map[string]string),
	}
	if err := cache.updateDependencyHashes(); err != nil {
		return nil, err
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		// unreadable caches are rebuilt
		return nil
	}
	if payload.Schema != cacheSchemaVersion || c.haveDependenciesChanged(payload.Dependencies) {
		c.dirty = true
		return nil
	}
	if payload.Entries != nil {
		c.entries = payload.Entries
	}
	return nil
}

// Save writes the cache to disk if it changed since it was loaded.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}

	tmp, err := os.CreateTemp(c.CacheDir, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	payload := cachePayload{
		Schema:       cacheSchemaVersion,
		Dependencies: c.dependencyHashes,
		Entries:      c.entries,
	}
	if err := msgpack.NewEncoder(tmp).Encode(&payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.dirty = false
	return nil
}

func (c *Cache) Set(filename string, source []byte, issues []tt.Issue) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Hash:         contentHash(source),
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}
	c.dirty = true
	return nil
}

func (c *Cache) Get(filename string, source []byte) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(source, entry) {
		delete(c.entries, filename)
		c.dirty = true
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(source []byte, entry CacheEntry) bool {
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.Hash != contentHash(source)
}

func (c *Cache) haveDependenciesChanged(stored map[string]string) bool {
	if len(stored) != len(c.dependencyHashes) {
		return true
	}
	for file, hash := range c.dependencyHashes {
		if stored[file] != hash {
			return true
		}
	}
	return false
}

func (c *Cache) updateDependencyHashes() error {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if errors.Is(err, os.ErrNotExist) {
			hash = ""
		} else if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		c.dependencyHashes[file] = hash
	}
	return nil
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	c.entries = make(map[string]CacheEntry)
	c.dirty = true
	c.mutex.Unlock()

	_ = c.Save() // ignore error as this is a manual operation
}

func contentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

func getFileHash(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return contentHash(content), nil
}
