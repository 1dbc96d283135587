package bloggen

import "sync"

// PostSource yields the current set of posts. *Store is the canonical
// implementation; PostCache wraps any source with memoization.
type PostSource interface {
	LoadPosts() ([]Post, error)
}

// PostCache memoizes a PostSource so repeated builds in watch mode do not
// re-read the content directory when only the theme or static files
// changed. The preview watcher invalidates it on content changes.
type PostCache struct {
	mu     sync.RWMutex
	posts  []Post
	loaded bool
	source PostSource
}

// NewPostCache creates a PostCache backed by the given source.
func NewPostCache(source PostSource) *PostCache {
	return &PostCache{source: source}
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.loaded = false
	c.mu.Unlock()
}

// LoadPosts returns the cached posts, loading from the source if needed.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) LoadPosts() ([]Post, error) {
	c.mu.RLock()
	if c.loaded {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.posts, nil
	}
	posts, err := c.source.LoadPosts()
	if err != nil {
		return nil, err
	}
	c.posts = posts
	c.loaded = true
	return posts, nil
}
