package photo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrOutsideRoot is returned for photo paths that escape the static directory.
var ErrOutsideRoot = errors.New("photo path outside static dir")

type entry struct {
	data    []byte
	info    Info
	fetched time.Time
}

// Cache holds scaled photos read from a static directory. Concurrent misses
// for the same key share one decode.
type Cache struct {
	root string
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache serves files below root and keeps results for ttl.
func NewCache(root string, ttl time.Duration) *Cache {
	return &Cache{root: root, ttl: ttl, entries: make(map[string]entry)}
}

// Invalidate drops every cached result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Resolve maps a site path like "/kevin_martinez.jpg" to a file below root.
func (c *Cache) Resolve(sitePath string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+sitePath)), "/"))
	full := filepath.Join(c.root, rel)
	root := filepath.Clean(c.root)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// Get returns sitePath scaled to width as JPEG.
func (c *Cache) Get(sitePath string, width int) ([]byte, Info, error) {
	key := fmt.Sprintf("%s@%d", sitePath, width)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(e.fetched) < c.ttl {
		return e.data, e.info, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		full, err := c.Resolve(sitePath)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(full)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, info, err := Resize(f, width)
		if err != nil {
			return nil, err
		}
		e := entry{data: data, info: info, fetched: time.Now()}
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, Info{}, err
	}
	e = v.(entry)
	return e.data, e.info, nil
}
