package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// Store is an in-memory typed lookup table
type Store[T any] struct {
	cache *gocache.Cache
}

// NewStore creates an empty store whose entries never expire
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		cache: gocache.New(noExpiration, 0),
	}
}

// Get retrieves a value from the store
func (s *Store[T]) Get(key string) (T, bool) {
	if val, found := s.cache.Get(key); found {
		if v, ok := val.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Set stores a value, replacing any previous one
func (s *Store[T]) Set(key string, value T) {
	s.cache.Set(key, value, gocache.NoExpiration)
}

// Add stores a value only if the key is free
func (s *Store[T]) Add(key string, value T) bool {
	return s.cache.Add(key, value, gocache.NoExpiration) == nil
}

