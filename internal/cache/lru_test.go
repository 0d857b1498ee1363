package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Evicts(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	_, _ = c.Get("a") // a is now most recent
	c.Add("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Update(t *testing.T) {
	c := New[string, int](1)
	c.Add("a", 1)
	c.Add("a", 5)
	v, _ := c.Get("a")
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_BadCapacity(t *testing.T) {
	assert.Panics(t, func() { New[string, int](0) })
}
