package cache

import (
	"sync"

	"github.com/liveflow/hls-gateway/log"
)

type Cache[T interface{}] struct {
	cache map[string]T
	mutex sync.Mutex
}

func New[T interface{}]() *Cache[T] {
	return &Cache[T]{
		cache: make(map[string]T),
	}
}

func (c *Cache[T]) Remove(requestID, streamName string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.cache, streamName)
	log.Log(requestID, "Deleting from Segmenting Cache", "stream_name", streamName)
}

func (c *Cache[T]) Get(streamName string) T {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	info, ok := c.cache[streamName]
	if ok {
		return info
	}
	var zero T
	return zero
}

func (c *Cache[T]) Store(streamName string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[streamName] = value
	// log.Log(streamInfo.RequestID, "Writing to Segmenting Cache", "stream_name", streamName)
}

// StoreIfUnderLimit stores value under streamName and returns true only
// if doing so keeps the cache at or under limit entries, checking the
// size and storing under a single lock acquisition so callers get an
// atomic "admit if there's room" operation instead of racing a separate
// Len/Store pair.
func (c *Cache[T]) StoreIfUnderLimit(streamName string, value T, limit int) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.cache) >= limit {
		return false
	}
	c.cache[streamName] = value
	return true
}

func (c *Cache[T]) UnittestIntrospection() *map[string]T {
	return &c.cache
}

// Len reports how many entries the cache currently holds.
func (c *Cache[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.cache)
}
