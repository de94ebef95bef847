package uriparser

import (
	"log/slog"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestClauseCacheEvictsWhenFull(t *testing.T) {
	c := newClauseCache(2, slog.Default())

	c.put("a", 1)
	c.put("b", 2)
	assert.Equal(t, 2, c.len())

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.put("c", 3)
	assert.Equal(t, 0, c.len(), "exceeding the limit clears the cache")
	_, ok = c.get("a")
	assert.False(t, ok)
}

func TestClauseCacheIgnoresDuplicatePuts(t *testing.T) {
	c := newClauseCache(4, slog.Default())
	c.put("a", 1)
	c.put("a", 2)

	assert.Equal(t, 1, c.len())
	v, _ := c.get("a")
	assert.Equal(t, 1, v, "first stored tree wins")
}

func TestClauseCacheChecksFullKey(t *testing.T) {
	c := newClauseCache(4, slog.Default())
	c.entries.Store(xxhash.Sum64String("wanted"), &cacheEntry{key: "colliding", value: 1})

	_, ok := c.get("wanted")
	assert.False(t, ok)
}

func TestNilClauseCache(t *testing.T) {
	c := newClauseCache(0, slog.Default())
	assert.Nil(t, c)

	c.put("a", 1)
	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}

func TestCacheKeySeparatesParts(t *testing.T) {
	assert.NotEqual(t, cacheKey("a", "$filter", "b"), cacheKey("a$filter", "", "b"))
}
