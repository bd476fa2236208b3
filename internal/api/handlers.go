package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/irt"
	"github.com/abhisek/thetacat/internal/itembank"
	"github.com/abhisek/thetacat/internal/store"
)

var validate = validator.New()

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// EstimateResponse reports an estimate. Infinite or undefined values are
// encoded as null and explained by Outcome.
type EstimateResponse struct {
	EventID       string      `json:"event_id,omitempty"`
	ExamineeID    string      `json:"examinee_id,omitempty"`
	Outcome       irt.Outcome `json:"outcome"`
	Theta         *float64    `json:"theta"`
	StandardError *float64    `json:"standard_error"`
	LogLikelihood *float64    `json:"log_likelihood"`
	Evaluations   int         `json:"evaluations"`
	Rounds        int         `json:"rounds"`
	Converged     bool        `json:"converged"`
	Precision     int         `json:"precision"`
}

// BatchRequest carries one response set per test-taker.
type BatchRequest struct {
	Sets []json.RawMessage `json:"sets" validate:"required,min=1,max=1000"`
}

// BatchEntry is one index-aligned batch result.
type BatchEntry struct {
	Estimate *EstimateResponse `json:"estimate,omitempty"`
	Error    *ErrorResponse    `json:"error,omitempty"`
}

// BatchResponse holds results in request order.
type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

// InformationRequest asks for test information at a theta.
type InformationRequest struct {
	Theta *float64   `json:"theta" validate:"required"`
	Items []irt.Item `json:"items" validate:"required,min=1"`
}

// InformationResponse reports per-item and total information.
type InformationResponse struct {
	Theta         float64    `json:"theta"`
	Items         []*float64 `json:"items"`
	Total         *float64   `json:"total"`
	StandardError *float64   `json:"standard_error"`
}

// LatestResponse is the newest stored estimate for an examinee.
type LatestResponse struct {
	EstimateResponse
	Sequence  int64  `json:"sequence"`
	Timestamp string `json:"timestamp"`
}

func (h *handler) estimate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
		return
	}

	req, err := h.parseSet(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	est, err := h.svc.Estimate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEstimateResponse(est))
}

func (h *handler) estimateBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16*maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Kind: "invalid_request"})
		return
	}
	if err := validate.Struct(body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid batch: %v", err), Kind: "invalid_request"})
		return
	}

	resp := BatchResponse{Results: make([]BatchEntry, len(body.Sets))}
	var (
		reqs  []estimation.Request
		index []int
	)
	for i, raw := range body.Sets {
		req, err := h.parseSet(raw)
		if err != nil {
			_, e := errorBody(err)
			resp.Results[i].Error = &e
			continue
		}
		reqs = append(reqs, req)
		index = append(index, i)
	}

	results, err := h.svc.EstimateBatch(r.Context(), reqs)
	if err != nil {
		writeError(w, err)
		return
	}
	for j, res := range results {
		i := index[j]
		if res.Err != nil {
			_, e := errorBody(res.Err)
			resp.Results[i].Error = &e
			continue
		}
		er := toEstimateResponse(res.Estimate)
		resp.Results[i].Estimate = &er
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) information(w http.ResponseWriter, r *http.Request) {
	var body InformationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Kind: "invalid_request"})
		return
	}
	if err := validate.Struct(body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid information request: %v", err), Kind: "invalid_request"})
		return
	}

	rep, err := h.svc.Information(*body.Theta, body.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	out := InformationResponse{
		Theta:         rep.Theta,
		Items:         make([]*float64, len(rep.Items)),
		Total:         finite(rep.Total),
		StandardError: finite(rep.StandardError),
	}
	for i, it := range rep.Items {
		out.Items[i] = finite(it.Information)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) latest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.svc.Latest(r.Context(), id)
	if err != nil {
		h.logger.Error("latest estimate lookup failed", "examinee", id, "error", err)
		writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("no estimates for %q", id), Kind: "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, toLatestResponse(rec))
}

func (h *handler) parseSet(raw []byte) (estimation.Request, error) {
	rs, err := itembank.ParseResponseSet(raw)
	if err != nil {
		return estimation.Request{}, err
	}
	return h.svc.Resolve(rs)
}

func toEstimateResponse(est *estimation.Estimate) EstimateResponse {
	return EstimateResponse{
		EventID:       est.EventID,
		ExamineeID:    est.ExamineeID,
		Outcome:       est.Outcome,
		Theta:         finite(est.Theta),
		StandardError: finite(est.StandardError),
		LogLikelihood: finite(est.LogLikelihood),
		Evaluations:   est.Evaluations,
		Rounds:        est.Rounds,
		Converged:     est.Converged,
		Precision:     est.Precision,
	}
}

func toLatestResponse(rec *store.EstimateEventRecord) LatestResponse {
	return LatestResponse{
		EstimateResponse: EstimateResponse{
			EventID:       rec.ID,
			ExamineeID:    rec.ExamineeID,
			Outcome:       rec.Outcome,
			Theta:         finite(rec.Theta),
			StandardError: finite(rec.StandardError),
			LogLikelihood: finite(rec.LogLikelihood),
			Evaluations:   rec.Evaluations,
			Rounds:        rec.Rounds,
			Converged:     rec.Converged,
			Precision:     rec.Precision,
		},
		Sequence:  rec.Sequence,
		Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// finite returns nil for values JSON cannot represent.
func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// errorBody maps an error to a status code and body.
func errorBody(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error(), Kind: estimation.ErrorKind(err)}

	var invalid *itembank.InvalidResponseSetError
	switch {
	case errors.As(err, &invalid):
		body.Kind = "invalid_request"
		return http.StatusBadRequest, body
	case errors.Is(err, irt.ErrDimensionMismatch),
		errors.Is(err, irt.ErrNoResponses),
		errors.Is(err, itembank.ErrItemNotFound):
		return http.StatusBadRequest, body
	case errors.Is(err, irt.ErrDomain), errors.Is(err, irt.ErrOverflow):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, body
	default:
		body.Error = "internal error"
		return http.StatusInternalServerError, body
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
