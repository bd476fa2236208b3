package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/thetacat/internal/irt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func finiteEvent(examinee string, theta float64) EstimateEventData {
	return EstimateEventData{
		ExamineeID:    examinee,
		Outcome:       irt.OutcomeFinite,
		Theta:         theta,
		StandardError: 0.8,
		LogLikelihood: -2.16,
		Evaluations:   26,
		Rounds:        10,
		Precision:     6,
		Responses:     []int{1, 0, 1},
		Items:         irt.Items{{A: 1.2, B: 0, C: 0.1}, {A: 0.9, B: -0.5, C: 0.05}, {A: 1.5, B: 0.5, C: 0.2}},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	var got string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&got))
	assert.Equal(t, "wal", got)
}

func TestSequenceIsMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestAppendAndQueryEstimateEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	id1, err := repo.AppendEstimateEvent(ctx, finiteEvent("alice", 0.62))
	require.NoError(t, err)
	id2, err := repo.AppendEstimateEvent(ctx, finiteEvent("bob", -0.3))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	events, err := repo.QueryEstimateEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, id2, events[0].ID)
	assert.Equal(t, "bob", events[0].ExamineeID)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)

	got := events[1]
	assert.Equal(t, irt.OutcomeFinite, got.Outcome)
	assert.InDelta(t, 0.62, got.Theta, 1e-12)
	assert.InDelta(t, 0.8, got.StandardError, 1e-12)
	assert.InDelta(t, -2.16, got.LogLikelihood, 1e-12)
	assert.Equal(t, 26, got.Evaluations)
	assert.Equal(t, 10, got.Rounds)
	assert.False(t, got.Converged)
	assert.Equal(t, []int{1, 0, 1}, got.Responses)
	assert.Equal(t, finiteEvent("", 0).Items, got.Items)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)
}

func TestQueryEstimateEvents_Filters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.AppendEstimateEvent(ctx, finiteEvent("alice", float64(i)))
		require.NoError(t, err)
	}
	_, err := repo.AppendEstimateEvent(ctx, finiteEvent("bob", 9))
	require.NoError(t, err)

	alice, err := repo.QueryEstimateEvents(ctx, QueryOpts{ExamineeID: "alice"})
	require.NoError(t, err)
	assert.Len(t, alice, 4)

	limited, err := repo.QueryEstimateEvents(ctx, QueryOpts{ExamineeID: "alice", Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.InDelta(t, 3.0, limited[0].Theta, 1e-12)

	all, err := repo.QueryEstimateEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 5)

	after, err := repo.QueryEstimateEvents(ctx, QueryOpts{After: all[2].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 2)

	before, err := repo.QueryEstimateEvents(ctx, QueryOpts{Before: all[2].Sequence})
	require.NoError(t, err)
	assert.Len(t, before, 2)

	future, err := repo.QueryEstimateEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestDegenerateOutcomesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	_, err := repo.AppendEstimateEvent(ctx, EstimateEventData{
		ExamineeID:    "carol",
		Outcome:       irt.OutcomeAllCorrect,
		Theta:         math.Inf(1),
		StandardError: math.Inf(1),
		LogLikelihood: math.NaN(),
		Precision:     6,
		Responses:     []int{1, 1},
		Items:         irt.Items{{A: 1, B: 0, C: 0}, {A: 1, B: 1, C: 0}},
	})
	require.NoError(t, err)
	_, err = repo.AppendEstimateEvent(ctx, EstimateEventData{
		ExamineeID: "dave",
		Outcome:    irt.OutcomeAllIncorrect,
		Theta:      math.Inf(-1),
		Responses:  []int{0},
		Items:      irt.Items{{A: 1, B: 0, C: 0}},
	})
	require.NoError(t, err)

	carol, err := repo.LatestEstimate(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, carol)
	assert.True(t, math.IsInf(carol.Theta, 1))
	assert.True(t, math.IsInf(carol.StandardError, 1))
	assert.True(t, math.IsNaN(carol.LogLikelihood))

	dave, err := repo.LatestEstimate(ctx, "dave")
	require.NoError(t, err)
	require.NotNil(t, dave)
	assert.True(t, math.IsInf(dave.Theta, -1))
}

func TestLatestEstimate_None(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.EventRepo().LatestEstimate(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestEstimateStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, theta := range []float64{-1, 0.5, 2} {
		_, err := repo.AppendEstimateEvent(ctx, finiteEvent("x", theta))
		require.NoError(t, err)
	}
	_, err := repo.AppendEstimateEvent(ctx, EstimateEventData{
		Outcome: irt.OutcomeAllCorrect, Theta: math.Inf(1), Responses: []int{1}, Items: irt.Items{{A: 1}},
	})
	require.NoError(t, err)

	stats, err := repo.EstimateStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, irt.OutcomeAllCorrect, stats[0].Outcome)
	assert.Equal(t, 1, stats[0].Count)
	assert.True(t, math.IsNaN(stats[0].MeanTheta))

	assert.Equal(t, irt.OutcomeFinite, stats[1].Outcome)
	assert.Equal(t, 3, stats[1].Count)
	assert.InDelta(t, 0.5, stats[1].MeanTheta, 1e-12)
}

func TestWithConnPragmas(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", withConnPragmas("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", withConnPragmas("file:a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(0)", withConnPragmas("a.db?_pragma=foreign_keys(0)"))
}
