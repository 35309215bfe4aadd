// Package repository defines the simulation result store interface and errors.
package repository

import (
	"context"

	"github.com/hitsim/hitsim/internal/domain/model"
)

// Store provides read/write access to completed simulation results.
type Store interface {
	// Put stores the result for its job ID, replacing any previous value.
	Put(ctx context.Context, r model.Result) error

	// Get returns the stored result for a job ID.
	// Returns ErrNotFound when the job has no stored result.
	Get(ctx context.Context, jobID string) (model.Result, error)

	// Count returns the number of stored results.
	Count(ctx context.Context) int
}
