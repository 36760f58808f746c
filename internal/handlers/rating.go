package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/present"
	"github.com/jobboard/apiserver/internal/services"
	"github.com/jobboard/apiserver/types"
)

type RatingHandler struct {
	ratingService *services.RatingService
	codec         IDCodec
	events        events.Publisher
}

func NewRatingHandler(ratingService *services.RatingService, codec IDCodec, publisher events.Publisher) *RatingHandler {
	return &RatingHandler{ratingService: ratingService, codec: codec, events: publisher}
}

func RatingRouter(r chi.Router, handler *RatingHandler, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Post("/", handler.CreateRating)
	r.With(DecodeID(handler.codec, "userId")).Get("/average/{userId}", handler.Average)
}

// CreateRating records a rating by the authenticated user. Body ids are
// opaque and resolved here; the evaluator always comes from the token.
func (h *RatingHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var missing []string
	if req.Score == nil {
		missing = append(missing, "score")
	}
	if strings.TrimSpace(req.MeasuredID) == "" {
		missing = append(missing, "measuredId")
	}
	if len(missing) > 0 {
		writeServiceError(w, r, apperr.MissingFields(missing...))
		return
	}

	evaluated, ok := h.codec.Decode(strings.TrimSpace(req.MeasuredID))
	if !ok {
		writeServiceError(w, r, apperr.NotFound("evaluated user not found"))
		return
	}
	rating := types.Rating{
		Score:       *req.Score,
		Comment:     strings.TrimSpace(req.Comment),
		EvaluatedID: evaluated,
	}
	if raw := strings.TrimSpace(req.JobID); raw != "" {
		jobID, ok := h.codec.Decode(raw)
		if !ok {
			writeServiceError(w, r, apperr.NotFound("job not found"))
			return
		}
		rating.JobID = &jobID
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	created, err := h.ratingService.Create(r.Context(), principal, rating)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := present.Rating(h.codec, created)
	h.events.Publish(r.Context(), events.RatingCreated, payload)
	writeData(w, http.StatusCreated, "rating created", payload)
}

// Average returns the mean score a user received, 0 when unrated.
func (h *RatingHandler) Average(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ratingService.Summary(r.Context(), pathID(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", summary)
}

type RatingRequest struct {
	Score      *float64 `json:"score"`
	Comment    string   `json:"comment"`
	MeasuredID string   `json:"measuredId"`
	JobID      string   `json:"jobId"`
}
