package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

var _ EventRepo = (*MockEventRepo)(nil)

// MockEventRepo is an in-memory EventRepo for testing.
// It assigns sequential IDs and can be made to fail appends.
type MockEventRepo struct {
	mu        sync.Mutex
	events    []EstimateEventRecord
	AppendErr error
}

// NewMockEventRepo creates an empty MockEventRepo.
func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{}
}

// AppendEstimateEvent stores the event or returns AppendErr when set.
func (m *MockEventRepo) AppendEstimateEvent(_ context.Context, data EstimateEventData) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return "", m.AppendErr
	}
	seq := int64(len(m.events) + 1)
	id := fmt.Sprintf("mock-%d", seq)
	m.events = append(m.events, EstimateEventRecord{
		ID:                id,
		Sequence:          seq,
		Timestamp:         time.Now().UTC(),
		EstimateEventData: data,
	})
	return id, nil
}

// QueryEstimateEvents honours ExamineeID, After, Before and Limit.
func (m *MockEventRepo) QueryEstimateEvents(_ context.Context, opts QueryOpts) ([]EstimateEventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []EstimateEventRecord
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if opts.ExamineeID != "" && e.ExamineeID != opts.ExamineeID {
			continue
		}
		if opts.After > 0 && e.Sequence <= opts.After {
			continue
		}
		if opts.Before > 0 && e.Sequence >= opts.Before {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

// LatestEstimate returns the newest event for examineeID, or nil.
func (m *MockEventRepo) LatestEstimate(ctx context.Context, examineeID string) (*EstimateEventRecord, error) {
	recs, _ := m.QueryEstimateEvents(ctx, QueryOpts{ExamineeID: examineeID, Limit: 1})
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// EstimateStats aggregates stored events by outcome.
func (m *MockEventRepo) EstimateStats(_ context.Context) ([]OutcomeStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOutcome := map[string]*OutcomeStats{}
	sums := map[string]float64{}
	for _, e := range m.events {
		k := string(e.Outcome)
		st, ok := byOutcome[k]
		if !ok {
			st = &OutcomeStats{Outcome: e.Outcome}
			byOutcome[k] = st
		}
		st.Count++
		sums[k] += e.Theta
	}

	out := make([]OutcomeStats, 0, len(byOutcome))
	for k, st := range byOutcome {
		if math.IsInf(sums[k], 0) {
			st.MeanTheta = math.NaN()
		} else {
			st.MeanTheta = sums[k] / float64(st.Count)
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Outcome < out[j].Outcome })
	return out, nil
}

// Events returns a copy of all stored events in append order.
func (m *MockEventRepo) Events() []EstimateEventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EstimateEventRecord(nil), m.events...)
}
