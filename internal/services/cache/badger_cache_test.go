package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/common"
)

func testCache(t *testing.T) *BadgerCache {
	t.Helper()
	config := &common.CacheConfig{
		Enabled:          true,
		Path:             t.TempDir() + "/badger",
		PageTTLHours:     24,
		CareerURLTTLDays: 7,
	}
	c, err := NewBadgerCache(config, common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBadgerCache_PageRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	_, ok := c.GetPage(ctx, "https://acme.com/careers")
	assert.False(t, ok, "miss before put")

	require.NoError(t, c.PutPage(ctx, "https://acme.com/careers", "page content"))

	content, ok := c.GetPage(ctx, "https://acme.com/careers")
	assert.True(t, ok)
	assert.Equal(t, "page content", content)
}

func TestBadgerCache_PageTTLExpiry(t *testing.T) {
	c := testCache(t)
	c.pageTTL = time.Millisecond
	ctx := context.Background()

	require.NoError(t, c.PutPage(ctx, "https://acme.com/careers", "stale soon"))
	time.Sleep(5 * time.Millisecond)

	_, ok := c.GetPage(ctx, "https://acme.com/careers")
	assert.False(t, ok, "expired entries read as misses")
}

func TestBadgerCache_CareerURLRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	_, ok := c.GetCareerURL(ctx, "Acme")
	assert.False(t, ok)

	require.NoError(t, c.PutCareerURL(ctx, "Acme", "https://boards.greenhouse.io/acme"))

	url, ok := c.GetCareerURL(ctx, "Acme")
	assert.True(t, ok)
	assert.Equal(t, "https://boards.greenhouse.io/acme", url)
}

func TestBadgerCache_UpsertOverwrites(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutCareerURL(ctx, "Acme", "https://old.example"))
	require.NoError(t, c.PutCareerURL(ctx, "Acme", "https://new.example"))

	url, ok := c.GetCareerURL(ctx, "Acme")
	assert.True(t, ok)
	assert.Equal(t, "https://new.example", url)
}
