package store

import (
	"context"
	"time"

	"github.com/abhisek/thetacat/internal/irt"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	ExamineeID string    // exact match when set
	Limit      int       // max results (0 = unlimited)
	After      int64     // sequence > After
	Before     int64     // sequence < Before
	From       time.Time // timestamp >= From
	To         time.Time // timestamp <= To
}

// EstimateEventData captures one completed theta estimate.
type EstimateEventData struct {
	ExamineeID    string
	Outcome       irt.Outcome
	Theta         float64 // ±Inf for degenerate outcomes
	StandardError float64
	LogLikelihood float64
	Evaluations   int
	Rounds        int
	Converged     bool
	Precision     int
	Responses     []int
	Items         irt.Items
}

// EstimateEventRecord is a stored estimate event.
type EstimateEventRecord struct {
	ID        string
	Sequence  int64
	Timestamp time.Time
	EstimateEventData
}

// OutcomeStats aggregates stored estimates sharing an outcome.
type OutcomeStats struct {
	Outcome   irt.Outcome
	Count     int
	MeanTheta float64 // NaN unless the outcome is finite
}

// EventRepo provides append and query access to estimate events.
type EventRepo interface {
	// AppendEstimateEvent records an estimate and returns its event ID.
	AppendEstimateEvent(ctx context.Context, data EstimateEventData) (string, error)

	// QueryEstimateEvents returns events newest first.
	QueryEstimateEvents(ctx context.Context, opts QueryOpts) ([]EstimateEventRecord, error)

	// LatestEstimate returns the newest event for an examinee, or nil.
	LatestEstimate(ctx context.Context, examineeID string) (*EstimateEventRecord, error)

	// EstimateStats returns per-outcome counts ordered by outcome.
	EstimateStats(ctx context.Context) ([]OutcomeStats, error)
}
