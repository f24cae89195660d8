package utils

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileEntry is a decoded file together with the stat data it was decoded from
type fileEntry[V any] struct {
	value   V
	modTime time.Time
	size    int64
}

// FileCache memoizes values decoded from files. An entry is dropped as soon
// as the file's modification time or size no longer match.
type FileCache[V any] struct {
	mu      sync.Mutex
	entries map[string]fileEntry[V]
}

// NewFileCache creates an empty cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{entries: make(map[string]fileEntry[V])}
}

// Load returns the cached value for path, reading and decoding the file when
// there is no fresh entry. Decode errors are not cached.
func (c *FileCache[V]) Load(path string, decode func(data []byte) (V, error)) (V, error) {
	var zero V
	clean := filepath.Clean(path)

	stat, err := os.Stat(clean)
	if err != nil {
		c.Delete(clean)
		return zero, err
	}

	c.mu.Lock()
	entry, ok := c.entries[clean]
	c.mu.Unlock()
	if ok && entry.modTime.Equal(stat.ModTime()) && entry.size == stat.Size() {
		return entry.value, nil
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return zero, err
	}
	value, err := decode(data)
	if err != nil {
		c.Delete(clean)
		return zero, err
	}

	c.mu.Lock()
	c.entries[clean] = fileEntry[V]{value: value, modTime: stat.ModTime(), size: stat.Size()}
	c.mu.Unlock()
	return value, nil
}

// Delete removes the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, filepath.Clean(path))
}

// Size returns the number of entries
func (c *FileCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
