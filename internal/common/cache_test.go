package common

import "testing"

func setupTestEnvironment(t *testing.T) (*Cache, func()) {
	t.Helper()

	// Set up the test environment
	cache := NewCache(0, 0)

	cleanup := func() {
		cache.Flush()
	}

	return cache, cleanup
}

func TestCache_Set(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}

func TestCache_Get(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}

func TestCache_Flush(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Flush()

	if _, ok := cache.Get("key"); ok {
		t.Error("expected cache to be flushed")
	}
}

func TestCache_Delete(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Delete("key")

	if _, ok := cache.Get("key"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKeyPostBySlug("hello-world"); got != "post:hello-world" {
		t.Errorf("unexpected post cache key: %s", got)
	}

	if got := CacheKeyUnreadCount(42); got != "unread_count:42" {
		t.Errorf("unexpected unread count cache key: %s", got)
	}
}
