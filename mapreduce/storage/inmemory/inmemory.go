package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
)

type Storage struct {
	mu      sync.RWMutex
	buckets map[string]map[string]string
}

func New() *Storage {
	return &Storage{
		buckets: make(map[string]map[string]string),
	}
}

func (st *Storage) Put(ctx context.Context, bucket, key, val string) error {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.Lock()
	defer st.mu.Unlock()

	b, ok := st.buckets[bucket]
	if !ok {
		b = make(map[string]string)
		st.buckets[bucket] = b
	}
	b[key] = val

	return nil
}

func (st *Storage) Get(ctx context.Context, bucket, key string) (string, bool, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	val, ok := st.buckets[bucket][key]

	return val, ok, nil
}

func (st *Storage) Keys(ctx context.Context, bucket string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	keys := make([]string, 0, len(st.buckets[bucket]))
	for k := range st.buckets[bucket] {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys, nil
}
