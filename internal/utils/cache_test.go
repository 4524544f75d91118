package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGlobalCache(t *testing.T) {
	InitCache()
	CacheSet("genres", []string{"Drama"}, time.Minute)
	v, ok := CacheGet("genres")
	assert.True(t, ok)
	assert.Equal(t, []string{"Drama"}, v)

	CacheDelete("genres")
	_, ok = CacheGet("genres")
	assert.False(t, ok)
}
