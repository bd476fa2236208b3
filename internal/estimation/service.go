// Package estimation runs theta estimates on behalf of callers and records
// their outcome.
package estimation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/thetacat/internal/irt"
	"github.com/abhisek/thetacat/internal/itembank"
	"github.com/abhisek/thetacat/internal/metrics"
	"github.com/abhisek/thetacat/internal/store"
)

const tracerName = "thetacat/estimation"

// Request is one test-taker's scored responses.
type Request struct {
	ExamineeID string
	Responses  []int
	Items      irt.Items
	Precision  int // 0 uses the service default
}

// Estimate is a completed estimate with its standard error.
type Estimate struct {
	EventID       string      `json:"event_id,omitempty"`
	ExamineeID    string      `json:"examinee_id,omitempty"`
	Theta         float64     `json:"theta"`
	Outcome       irt.Outcome `json:"outcome"`
	StandardError float64     `json:"standard_error"`
	LogLikelihood float64     `json:"log_likelihood"`
	Evaluations   int         `json:"evaluations"`
	Rounds        int         `json:"rounds"`
	Converged     bool        `json:"converged"`
	Precision     int         `json:"precision"`
}

// BatchResult pairs a batch entry with its estimate or error.
type BatchResult struct {
	Estimate *Estimate
	Err      error
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Events      store.EventRepo   // nil disables event recording
	Bank        itembank.Resolver // nil rejects bank item references
	Metrics     *metrics.Recorder // nil disables metrics
	Logger      *slog.Logger
	Precision   int
	Verbose     bool
	Concurrency int
}

// Service estimates theta and records each estimate.
type Service struct {
	events      store.EventRepo
	bank        itembank.Resolver
	metrics     *metrics.Recorder
	logger      *slog.Logger
	precision   int
	verbose     bool
	concurrency int
}

// NewService creates a Service from opts.
func NewService(opts Options) *Service {
	s := &Service{
		events:      opts.Events,
		bank:        opts.Bank,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		precision:   opts.Precision,
		verbose:     opts.Verbose,
		concurrency: opts.Concurrency,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.precision <= 0 {
		s.precision = irt.DefaultPrecision
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

// Resolve turns a parsed response set into a Request, looking up bank items.
func (s *Service) Resolve(rs *itembank.ResponseSet) (Request, error) {
	items, err := rs.Items(s.bank)
	if err != nil {
		return Request{}, fmt.Errorf("resolve items: %w", err)
	}
	return Request{
		ExamineeID: rs.ExamineeID,
		Responses:  rs.Vector(),
		Items:      items,
		Precision:  rs.Precision,
	}, nil
}

// Estimate runs the estimator for req and appends an estimate event.
// A failed event write is logged and does not fail the estimate.
func (s *Service) Estimate(ctx context.Context, req Request) (*Estimate, error) {
	precision := req.Precision
	if precision <= 0 {
		precision = s.precision
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Service.Estimate",
		trace.WithAttributes(
			attribute.String("examinee.id", req.ExamineeID),
			attribute.Int("responses.count", len(req.Responses)),
			attribute.Int("estimator.precision", precision),
		))
	defer span.End()

	start := time.Now()
	res, err := irt.EstimateContext(ctx, req.Responses, req.Items,
		irt.WithPrecision(precision),
		irt.WithVerbose(s.verbose),
		irt.WithLogger(s.logger),
	)
	if err != nil {
		kind := ErrorKind(err)
		s.metrics.ObserveError(kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("estimate failed", "examinee", req.ExamineeID, "kind", kind, "error", err)
		return nil, fmt.Errorf("estimate theta: %w", err)
	}
	elapsed := time.Since(start)

	est := &Estimate{
		ExamineeID:    req.ExamineeID,
		Theta:         res.Theta,
		Outcome:       res.Outcome,
		StandardError: math.Inf(1),
		LogLikelihood: res.LogLikelihood,
		Evaluations:   res.Evaluations,
		Rounds:        res.Rounds,
		Converged:     res.Converged,
		Precision:     precision,
	}
	if res.Outcome == irt.OutcomeFinite {
		se, err := irt.StandardError(res.Theta, req.Items)
		if err != nil {
			s.logger.Warn("standard error unavailable", "theta", res.Theta, "error", err)
		} else {
			est.StandardError = se
		}
	}

	s.metrics.ObserveEstimate(string(res.Outcome), res.Evaluations, elapsed)
	span.SetAttributes(
		attribute.String("estimate.outcome", string(res.Outcome)),
		attribute.Float64("estimate.theta", res.Theta),
		attribute.Int("estimate.evaluations", res.Evaluations),
		attribute.Bool("estimate.converged", res.Converged),
	)

	if s.events != nil {
		id, err := s.events.AppendEstimateEvent(ctx, store.EstimateEventData{
			ExamineeID:    req.ExamineeID,
			Outcome:       res.Outcome,
			Theta:         res.Theta,
			StandardError: est.StandardError,
			LogLikelihood: res.LogLikelihood,
			Evaluations:   res.Evaluations,
			Rounds:        res.Rounds,
			Converged:     res.Converged,
			Precision:     precision,
			Responses:     req.Responses,
			Items:         req.Items,
		})
		if err != nil {
			s.logger.Warn("failed to record estimate event", "examinee", req.ExamineeID, "error", err)
		} else {
			est.EventID = id
		}
	}

	span.SetStatus(codes.Ok, "estimate completed")
	return est, nil
}

// EstimateBatch estimates every request with bounded concurrency. Results
// are index-aligned with reqs; per-request failures are reported in the
// result, not as the returned error. The returned error is non-nil only
// when ctx is done before all requests were started.
func (s *Service) EstimateBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Service.EstimateBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(reqs))))
	defer span.End()

	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range reqs {
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			est, err := s.Estimate(gctx, reqs[idx])
			results[idx] = BatchResult{Estimate: est, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("estimate batch: %w", err)
	}
	span.SetStatus(codes.Ok, "batch completed")
	return results, nil
}

// Latest returns the newest recorded estimate for an examinee, or nil.
func (s *Service) Latest(ctx context.Context, examineeID string) (*store.EstimateEventRecord, error) {
	if s.events == nil {
		return nil, nil
	}
	rec, err := s.events.LatestEstimate(ctx, examineeID)
	if err != nil {
		return nil, fmt.Errorf("latest estimate: %w", err)
	}
	return rec, nil
}

// ItemInformation is the information one item contributes at theta.
type ItemInformation struct {
	Index       int     `json:"index"`
	Information float64 `json:"information"`
}

// InformationReport summarizes measurement precision at theta.
type InformationReport struct {
	Theta         float64           `json:"theta"`
	Items         []ItemInformation `json:"items"`
	Total         float64           `json:"total"`
	StandardError float64           `json:"standard_error"`
}

// Information computes per-item and total test information at theta.
func (s *Service) Information(theta float64, items irt.Items) (*InformationReport, error) {
	rep := &InformationReport{Theta: theta, Items: make([]ItemInformation, len(items))}
	for i, it := range items {
		info, err := it.Information(theta)
		if err != nil {
			s.metrics.ObserveError(ErrorKind(err))
			return nil, fmt.Errorf("information for item %d: %w", i, err)
		}
		rep.Items[i] = ItemInformation{Index: i, Information: info}
		rep.Total += info
	}
	rep.StandardError = math.Inf(1)
	if rep.Total > 0 {
		rep.StandardError = 1 / math.Sqrt(rep.Total)
	}
	return rep, nil
}

// ErrorKind classifies an estimation error for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, irt.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, irt.ErrNoResponses):
		return "no_responses"
	case errors.Is(err, irt.ErrDomain):
		return "domain"
	case errors.Is(err, irt.ErrOverflow):
		return "overflow"
	case errors.Is(err, itembank.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
