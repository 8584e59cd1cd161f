package mypenweb

import (
	"testing"
	"time"

	"github.com/mypen/mypenweb/views"
)

func TestPostCacheServesAndInvalidates(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, time.Hour)

	if _, err := s.InsertPost(views.BlogPost{
		Title: "One", TitleKA: "One", Slug: "one", Content: "x", ContentKA: "x", Published: true,
	}); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	posts, err := c.ListPosts(0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("cache has %d posts, want 1", len(posts))
	}

	// A write behind the cache's back stays invisible until invalidation.
	if _, err := s.InsertPost(views.BlogPost{
		Title: "Two", TitleKA: "Two", Slug: "two", Content: "x", ContentKA: "x", Published: true,
	}); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}
	posts, _ = c.ListPosts(0)
	if len(posts) != 1 {
		t.Errorf("cache refreshed without invalidation: %d posts", len(posts))
	}

	c.Invalidate()
	posts, _ = c.ListPosts(0)
	if len(posts) != 2 {
		t.Errorf("cache has %d posts after invalidation, want 2", len(posts))
	}
}

func TestPostCacheTTLExpiry(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, 10*time.Millisecond)

	if _, err := c.ListPosts(0); err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if _, err := s.InsertPost(views.BlogPost{
		Title: "Late", TitleKA: "Late", Slug: "late", Content: "x", ContentKA: "x", Published: true,
	}); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	posts, err := c.ListPosts(0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("cache has %d posts after TTL expiry, want 1", len(posts))
	}
}

func TestPostCacheGetPost(t *testing.T) {
	s := setupTestStore(t)
	c := NewPostCache(s, time.Hour)

	if _, err := s.InsertPost(views.BlogPost{
		Title: "Findable", TitleKA: "Findable", Slug: "findable", Content: "x", ContentKA: "x", Published: true,
	}); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	p, err := c.GetPost("findable")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if p.Slug != "findable" {
		t.Errorf("Slug = %q", p.Slug)
	}

	if _, err := c.GetPost("missing"); err != ErrNotFound {
		t.Errorf("GetPost(missing) err = %v, want ErrNotFound", err)
	}
}
