package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps every namespace in process memory. Data is lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Namespace(name string) Store {
	return &memoryStore{parent: m, ns: name}
}

type memoryStore struct {
	parent *Memory
	ns     string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.data[s.ns][key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	bucket, ok := s.parent.data[s.ns]
	if !ok {
		bucket = make(map[string]string)
		s.parent.data[s.ns] = bucket
	}
	bucket[key] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.data[s.ns], key)
	return nil
}

func (s *memoryStore) Keys(_ context.Context) ([]string, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	keys := make([]string, 0, len(s.parent.data[s.ns]))
	for k := range s.parent.data[s.ns] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
