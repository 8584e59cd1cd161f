package mypenweb

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mypen/mypenweb/views"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published blog posts with TTL. It is the
// serving-side analog of the ingestion webhook's "revalidate" step: writes go
// straight to the store and then invalidate here, so the listing and the new
// post become visible without waiting out the TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []views.BlogPost
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load. Called
// after every post write or delete; covers both the listing and post paths.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]views.BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListPosts(0)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []views.BlogPost{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListPosts returns published posts, newest first. A limit of 0 returns all.
func (c *PostCache) ListPosts(limit int) ([]views.BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (views.BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return views.BlogPost{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return views.BlogPost{}, ErrNotFound
}
