package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in a map, it is not durable and exists for
// tests and dry runs.
type MemoryStore struct {
	mutex  sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, fn func(w Writer) error) error {
	batch := &memoryBatch{}
	err := fn(batch)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, op := range batch.ops {
		if op.remove {
			delete(s.values, op.key)
			continue
		}
		s.values[op.key] = op.value
	}
	return nil
}

type memoryOp struct {
	key    string
	value  string
	remove bool
}

type memoryBatch struct {
	ops []memoryOp
}

func (b *memoryBatch) Set(ctx context.Context, key, value string) error {
	b.ops = append(b.ops, memoryOp{key: key, value: value})
	return nil
}

func (b *memoryBatch) Remove(ctx context.Context, key string) error {
	b.ops = append(b.ops, memoryOp{key: key, remove: true})
	return nil
}
