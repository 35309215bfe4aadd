// Package repository defines the simulation result store interface and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/hitsim/hitsim/internal/domain/model"
	"github.com/hitsim/hitsim/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
)

// shard holds a slice of the keyspace under its own lock, keeping job
// lookups from contending on a single mutex.
type shard struct {
	mu      sync.RWMutex
	results map[string]model.Result
}

// MemStore implements Store with sharded in-memory maps keyed by job ID.
type MemStore struct {
	shards     []*shard
	shardCount int
}

// NewMemStore creates a sharded in-memory result store.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{results: make(map[string]model.Result)}
	}

	metrics.UpdateStoreShardCount(s.shardCount)

	return s
}

// pick maps a job ID onto its shard.
func (s *MemStore) pick(jobID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(jobID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Put stores the result for its job ID.
func (s *MemStore) Put(_ context.Context, r model.Result) error {
	if r.JobID == "" {
		return ErrEmptyJobID
	}
	sh := s.pick(r.JobID)
	sh.mu.Lock()
	sh.results[r.JobID] = r
	sh.mu.Unlock()

	metrics.UpdateResultsStored(s.Count(context.Background()))
	return nil
}

// Get returns the stored result for a job ID.
func (s *MemStore) Get(_ context.Context, jobID string) (model.Result, error) {
	sh := s.pick(jobID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	r, ok := sh.results[jobID]
	if !ok {
		return model.Result{}, ErrNotFound
	}
	return r, nil
}

// Count returns the number of stored results across all shards.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.results)
		sh.mu.RUnlock()
	}
	return total
}
