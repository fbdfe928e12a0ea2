// Package cache tells whether the given content for a key was already seen.
// It lets incremental batches skip stylesheets that did not change.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache maps keys (output paths) to the hash of the content last seen for them.
type Cache struct {
	mu   sync.Mutex
	file string
	m    map[string]string
}

// DefaultFile returns the default cache file path.
func DefaultFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "cssminify", "hashes.json"), nil
}

// Open loads the cache stored in file. A missing file yields an empty cache.
// An empty file name yields a cache that is never persisted.
func Open(file string) (*Cache, error) {
	c := &Cache{file: file, m: make(map[string]string)}
	if file == "" {
		return c, nil
	}

	// #nosec G304 -- path comes from the user's own configuration
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &c.m); err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", file, err)
	}
	return c, nil
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Seen sets the content hash for key to a new value.
// It returns true if the key was already cached with the same hash.
func (c *Cache) Seen(key string, content []byte) bool {
	h := contentHash(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.m[key]; ok && old == h {
		return true
	}
	c.m[key] = h
	return false
}

// Forget removes key, so the next Seen for it reports false.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Save writes the cache to its file. It is a no-op for in-memory caches.
func (c *Cache) Save() error {
	if c.file == "" {
		return nil
	}

	c.mu.Lock()
	data, err := json.MarshalIndent(c.m, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.file), 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp := c.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.file); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
