// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"runtime"
	"sync"
	"time"

	playqueue "github.com/hitsim/hitsim/internal/adapters/mq/queue"
	workerpool "github.com/hitsim/hitsim/internal/adapters/mq/worker"
	"github.com/hitsim/hitsim/internal/adapters/repository"
	"github.com/hitsim/hitsim/internal/domain/combo"
	"github.com/hitsim/hitsim/internal/domain/dedupe"
	"github.com/hitsim/hitsim/internal/domain/judgement"
	"github.com/hitsim/hitsim/internal/domain/model"
	"github.com/hitsim/hitsim/internal/domain/synth"
	"github.com/hitsim/hitsim/pkg/logger"
	"github.com/hitsim/hitsim/pkg/metrics"
)

// Service implements the API dependencies for the simulation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	results    repository.Store
	deduper    dedupe.Deduper
	playQueue  playqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the play queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the result store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100_000,
		dedupeSize:  50_000,
		shardCount:  8,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting simulation service...")

	s.results = repository.NewMemStore(ctx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.playQueue = playqueue.NewInMemoryQueue(playqueue.WithCapacity(s.queueSize))

	s.workerPool = workerpool.NewPool(s.workerCount, s.playQueue, s, s.results)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "simulation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping simulation service...")

	if s.workerPool != nil {
		// Close the queue first so workers drain the backlog, then stop.
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "simulation service stopped")
}

// Simulate synthesizes a distribution and combo for a single play.
// It backs both the synchronous API path and the worker pool.
func (s *Service) Simulate(ctx context.Context, p model.Play) (model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSynthLatency(float64(time.Since(start).Milliseconds()))
	}()

	var opts []synth.Option
	if p.Good != nil {
		opts = append(opts, synth.WithGood(*p.Good))
	}
	if p.Acceptable != nil {
		opts = append(opts, synth.WithAcceptable(*p.Acceptable))
	}

	dist, err := synth.Synthesize(p.Objects, p.Misses, p.Accuracy, opts...)
	if err != nil {
		metrics.RecordSynthError()
		return model.Result{}, err
	}

	// An empty play has no defined accuracy; report zero rather than fail
	// the whole simulation.
	var acc float64
	if dist.Total() > 0 {
		acc, err = judgement.Accuracy(dist)
		if err != nil {
			return model.Result{}, err
		}
	}

	return model.Result{
		JobID:        p.JobID,
		Distribution: dist,
		Accuracy:     acc,
		MaxCombo:     combo.MaxCombo(p.Nested),
		ComputedAt:   time.Now().UTC(),
	}, nil
}

// SeenAndRecord atomically checks if a job id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordPlayDuplicate()
	}
	return seen
}

// Seen reports whether a job id was recorded, without recording it.
func (s *Service) Seen(ctx context.Context, id string) bool {
	return s.deduper.Seen(ctx, id)
}

// Unrecord removes a job ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of recorded job IDs.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a play for asynchronous processing.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, p model.Play) bool {
	s.logger.Debug(ctx, "received play",
		logger.String("jobID", p.JobID),
		logger.Int("objects", p.Objects),
		logger.Int("misses", p.Misses),
		logger.Float64("accuracy", p.Accuracy),
	)
	return s.playQueue.Enqueue(ctx, p)
}

// Result fetches the stored result for a job ID.
func (s *Service) Result(ctx context.Context, jobID string) (model.Result, error) {
	return s.results.Get(ctx, jobID)
}

// GetStats returns a snapshot of service counters for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
	}
	if s.playQueue != nil {
		stats["queueLength"] = s.playQueue.Len(context.Background())
	}
	if s.results != nil {
		stats["resultsStored"] = s.results.Count(context.Background())
	}
	if s.deduper != nil {
		stats["jobsSeen"] = s.deduper.Size()
	}
	return stats
}
