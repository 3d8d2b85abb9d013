package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bedside/internal/adapters/observability"
	"bedside/internal/app"
	"bedside/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	I *app.IntakeService

	// SubmitRPS/SubmitBurst shape the token bucket on POST /v1/reviews.
	// Zero RPS disables limiting (tests).
	SubmitRPS   float64
	SubmitBurst int
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Issues []domain.FieldIssue `json:"issues,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/facilities", h.listFacilities)
	s.mux.Get("/v1/facilities/{id}", h.getFacility)
	s.mux.Get("/v1/clinicians", h.listClinicians)
	s.mux.Get("/v1/clinicians/{npi}", h.getClinician)

	submit := http.HandlerFunc(h.submitReview)
	if h.SubmitRPS > 0 {
		s.mux.With(RateLimit(h.SubmitRPS, h.SubmitBurst)).Post("/v1/reviews", submit)
	} else {
		s.mux.Post("/v1/reviews", submit)
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemIssues(w, status, title, detail, nil)
}

func writeProblemIssues(w http.ResponseWriter, status int, title, detail string, issues []domain.FieldIssue) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Issues: issues}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers with ETag support: 304 when the client already holds
// this version, otherwise the full body.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listFacilities(w http.ResponseWriter, r *http.Request) {
	out := h.Q.SearchFacilities(r.Context(), r.URL.Query().Get("query"))
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getFacility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, err := h.Q.GetFacility(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "facility not found")
		return
	}
	writeCached(w, r, resp)
}

func (h *Handlers) listClinicians(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := h.Q.SearchClinicians(r.Context(), q.Get("name"), q.Get("npi"))
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getClinician(w http.ResponseWriter, r *http.Request) {
	npi := chi.URLParam(r, "npi")
	resp, err := h.Q.GetClinician(r.Context(), npi)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "clinician not found")
		return
	}
	writeCached(w, r, resp)
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	var in domain.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be a JSON review")
		return
	}

	receipt, err := h.I.Submit(r.Context(), in)
	if err != nil {
		if ve, ok := domain.AsValidation(err); ok {
			writeProblemIssues(w, http.StatusBadRequest, "Validation Failed", "review payload failed schema validation", ve.Issues)
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review target does not exist")
			return
		}
		log.Error().Err(err).Msg("review intake failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	observability.ObserveReviewPublished(in.TargetType)
	writeJSON(w, http.StatusCreated, receipt)
}
