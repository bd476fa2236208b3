package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/thetacat/internal/irt"
)

var selectColumns = []string{
	colEventID, colSequence, colTimestamp, colExamineeID, colOutcome,
	colTheta, colStandardError, colLogLikelihood,
	colEvaluations, colRounds, colConverged, colPrecision,
	colResponses, colItems,
}

// eventRepo implements EventRepo with the ent SQL builder over SQLite.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendEstimateEvent(ctx context.Context, data EstimateEventData) (string, error) {
	responses, err := json.Marshal(data.Responses)
	if err != nil {
		return "", fmt.Errorf("marshal responses: %w", err)
	}
	items, err := json.Marshal(data.Items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.New().String()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(estimateEventsTable).
		Columns(selectColumns...).
		Values(
			id, seqNum, time.Now().UTC(), data.ExamineeID, string(data.Outcome),
			nullable(data.Theta), nullable(data.StandardError), nullable(data.LogLikelihood),
			data.Evaluations, data.Rounds, data.Converged, data.Precision,
			string(responses), string(items),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save estimate event: %w", err)
	}
	return id, nil
}

func (r *eventRepo) QueryEstimateEvents(ctx context.Context, opts QueryOpts) ([]EstimateEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(selectColumns...).
		From(entsql.Table(estimateEventsTable))

	if opts.ExamineeID != "" {
		sel.Where(entsql.EQ(colExamineeID, opts.ExamineeID))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT(colSequence, opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT(colSequence, opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(colTimestamp, opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(colTimestamp, opts.To.UTC()))
	}
	sel.OrderBy(entsql.Desc(colSequence))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query estimate events: %w", err)
	}
	defer rows.Close()

	var out []EstimateEventRecord
	for rows.Next() {
		rec, err := scanEstimateEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LatestEstimate(ctx context.Context, examineeID string) (*EstimateEventRecord, error) {
	recs, err := r.QueryEstimateEvents(ctx, QueryOpts{ExamineeID: examineeID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (r *eventRepo) EstimateStats(ctx context.Context) ([]OutcomeStats, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(colOutcome, entsql.Count("*"), entsql.Avg(colTheta)).
		From(entsql.Table(estimateEventsTable)).
		GroupBy(colOutcome).
		OrderBy(colOutcome).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query estimate stats: %w", err)
	}
	defer rows.Close()

	var out []OutcomeStats
	for rows.Next() {
		var (
			outcome string
			count   int
			mean    sql.NullFloat64
		)
		if err := rows.Scan(&outcome, &count, &mean); err != nil {
			return nil, fmt.Errorf("scan estimate stats: %w", err)
		}
		st := OutcomeStats{Outcome: irt.Outcome(outcome), Count: count, MeanTheta: math.NaN()}
		if mean.Valid {
			st.MeanTheta = mean.Float64
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate stats: %w", err)
	}
	return out, nil
}

func scanEstimateEvent(rows *sql.Rows) (EstimateEventRecord, error) {
	var (
		rec                EstimateEventRecord
		outcome            string
		theta, se, ll      sql.NullFloat64
		responses, itemsJS []byte
	)
	err := rows.Scan(
		&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.ExamineeID, &outcome,
		&theta, &se, &ll,
		&rec.Evaluations, &rec.Rounds, &rec.Converged, &rec.Precision,
		&responses, &itemsJS,
	)
	if err != nil {
		return rec, fmt.Errorf("scan estimate event: %w", err)
	}

	rec.Outcome = irt.Outcome(outcome)
	rec.Theta = restoreTheta(rec.Outcome, theta)
	rec.StandardError = nullOr(se, math.Inf(1))
	rec.LogLikelihood = nullOr(ll, math.NaN())

	if err := json.Unmarshal(responses, &rec.Responses); err != nil {
		return rec, fmt.Errorf("unmarshal responses: %w", err)
	}
	if err := json.Unmarshal(itemsJS, &rec.Items); err != nil {
		return rec, fmt.Errorf("unmarshal items: %w", err)
	}
	return rec, nil
}

// nullable maps non-finite floats to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullOr(v sql.NullFloat64, fallback float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return fallback
}

func restoreTheta(outcome irt.Outcome, v sql.NullFloat64) float64 {
	switch outcome {
	case irt.OutcomeAllCorrect:
		return math.Inf(1)
	case irt.OutcomeAllIncorrect:
		return math.Inf(-1)
	}
	return nullOr(v, math.NaN())
}
