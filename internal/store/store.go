package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is the string-keyed configuration mapping the vault persists its
// envelope into.
type Store interface {
	// Has reports whether the key is present.
	Has(key string) (bool, error)
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores the value under key, replacing any previous value
	// atomically.
	Set(key, value string) error
}

// Memory is an in-memory Store. Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

// Has reports whether the key is present.
func (s *Memory) Has(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[key]
	return ok, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *Memory) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores the value under key.
func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
