package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string](2, 0)
	c.Set("a", "1")
	c.Set("b", "2")

	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("c", "3")

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Stats().Evictions)
}

func TestLRUSetOverwrites(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[[]string](4, time.Minute, WithClock(clock.Now))
	c.Set("tips", []string{"save more"})

	clock.Advance(59 * time.Second)
	_, ok := c.Get("tips")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("tips")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c := NewLRU[int](0, 0)
	c.Set("a", 1)
	assert.Equal(t, 1, c.Len())
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 0, c.Len())

	c.Set("b", 2)
	c.Purge()
	_, ok := c.Get("b")
	assert.False(t, ok)
}
