// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/hitsim/hitsim/internal/domain/combo"
	"github.com/hitsim/hitsim/internal/domain/judgement"
)

// Play is one simulation request flowing through the pipeline.
// Fields mirror the JSON schema accepted by POST /simulate and POST /jobs.
type Play struct {
	JobID       string         // unique id for idempotency and result lookup
	Objects     int            // judged object count of the beatmap
	Misses      int            // fixed miss count, never altered by synthesis
	Accuracy    float64        // requested accuracy in [0,1]
	Good        *int           // explicit good override, nil when absent
	Acceptable  *int           // explicit acceptable override, nil when absent
	Nested      []combo.Object // per-object nested sub-unit counts for combo
	SubmittedAt time.Time
}

// Result is the synthesized outcome of a Play.
type Result struct {
	JobID        string                 `json:"job_id"`
	Distribution judgement.Distribution `json:"distribution"`
	Accuracy     float64                `json:"accuracy"`
	MaxCombo     int                    `json:"max_combo"`
	ComputedAt   time.Time              `json:"computed_at"`
}
