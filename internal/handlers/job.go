package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/ownership"
	"github.com/jobboard/apiserver/internal/present"
	"github.com/jobboard/apiserver/internal/services"
	"github.com/jobboard/apiserver/internal/validation"
	"github.com/jobboard/apiserver/types"
)

const dateLayout = "2006-01-02"

// JobHandler provides HTTP handlers for job posts.
type JobHandler struct {
	jobService *services.JobService
	codec      IDCodec
	events     events.Publisher
}

func NewJobHandler(jobService *services.JobService, codec IDCodec, publisher events.Publisher) *JobHandler {
	return &JobHandler{jobService: jobService, codec: codec, events: publisher}
}

// JobRouter registers job routes on the given router.
func JobRouter(
	r chi.Router,
	handler *JobHandler,
	authMiddleware func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	decode := DecodeID(handler.codec, "id")

	r.Get("/", handler.ListJobs)
	r.With(authMiddleware).Post("/", handler.CreateJob)
	r.With(DecodeID(handler.codec, "userId")).Get("/user/{userId}", handler.ListUserJobs)
	r.Route("/{id}", func(r chi.Router) {
		r.With(decode, optionalAuth).Get("/", handler.GetJob)
		r.With(decode, authMiddleware).Put("/", handler.UpdateJob)
		r.With(decode, authMiddleware).Delete("/", handler.DeleteJob)
	})
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, total, err := h.jobService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    present.Jobs(h.codec, jobs),
		Meta:    &PageMeta{Page: page, Limit: limit, Total: total},
	})
}

// GetJob tolerates anonymous callers; isOwner is false for them.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.Get(r.Context(), pathID(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	principal, authenticated := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, JobDetailResponse{
		Envelope: Envelope{Success: true, Data: present.Job(h.codec, job)},
		IsOwner:  ownership.IsOwner(job, principal, authenticated),
	})
}

func (h *JobHandler) ListUserJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListByUser(r.Context(), pathID(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", present.Jobs(h.codec, jobs))
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req JobCreateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.trim()
	if err := validation.ValidateStruct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	job, err := req.toJob()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	created, err := h.jobService.Create(r.Context(), principal, job)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := present.Job(h.codec, created)
	h.events.Publish(r.Context(), events.JobCreated, payload)
	writeData(w, http.StatusCreated, "job created", payload)
}

func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var req JobUpdateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.trim()
	if err := validation.ValidateStruct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	updated, err := h.jobService.Update(r.Context(), principal, pathID(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := present.Job(h.codec, updated)
	h.events.Publish(r.Context(), events.JobUpdated, payload)
	writeData(w, http.StatusOK, "job updated", payload)
}

func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	deleted, err := h.jobService.Delete(r.Context(), principal, pathID(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.events.Publish(r.Context(), events.JobDeleted, present.Job(h.codec, deleted))
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "job deleted"})
}

type JobDetailResponse struct {
	Envelope
	IsOwner bool `json:"isOwner"`
}

type JobCreateRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Value       *float64 `json:"value" validate:"omitnil,gte=0"`
	CEP         string   `json:"cep" validate:"max=9"`
	Street      string   `json:"street"`
	District    string   `json:"district"`
	City        string   `json:"city"`
	State       string   `json:"state" validate:"omitempty,len=2"`
	Number      string   `json:"number"`
	Date        string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Phone       string   `json:"phone"`
	Category    string   `json:"category"`
	Payment     string   `json:"payment" validate:"omitempty,payment"`
	Urgent      bool     `json:"urgent"`
}

// trim strips surrounding whitespace so blank text fails the required rules.
func (req *JobCreateRequest) trim() {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	req.State = strings.TrimSpace(req.State)
}

func (req JobCreateRequest) toJob() (types.Job, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return types.Job{}, err
	}
	return types.Job{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		CEP:         req.CEP,
		Street:      req.Street,
		District:    req.District,
		City:        req.City,
		State:       strings.ToUpper(req.State),
		Number:      req.Number,
		Date:        date,
		Phone:       req.Phone,
		Category:    req.Category,
		Payment:     types.PaymentMode(req.Payment),
		Urgent:      req.Urgent,
	}, nil
}

// JobUpdateRequest is the whitelist of fields an owner may change.
type JobUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string  `json:"description" validate:"omitnil,min=1"`
	Value       *float64 `json:"value" validate:"omitnil,gte=0"`
	CEP         *string  `json:"cep" validate:"omitnil,max=9"`
	Street      *string  `json:"street"`
	District    *string  `json:"district"`
	City        *string  `json:"city"`
	State       *string  `json:"state" validate:"omitnil,len=2"`
	Number      *string  `json:"number"`
	Date        *string  `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Phone       *string  `json:"phone"`
	Category    *string  `json:"category"`
	Payment     *string  `json:"payment" validate:"omitnil,payment"`
	Urgent      *bool    `json:"urgent"`
}

func (req *JobUpdateRequest) trim() {
	for _, field := range []*string{req.Title, req.Description, req.Category, req.State} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func (req JobUpdateRequest) toPatch() (types.JobPatch, error) {
	patch := types.JobPatch{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		CEP:         req.CEP,
		Street:      req.Street,
		District:    req.District,
		City:        req.City,
		State:       req.State,
		Number:      req.Number,
		Phone:       req.Phone,
		Category:    req.Category,
		Urgent:      req.Urgent,
	}
	if req.Payment != nil {
		payment := types.PaymentMode(*req.Payment)
		patch.Payment = &payment
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return types.JobPatch{}, err
		}
		patch.Date = date
	}
	return patch, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.Validation("date must match YYYY-MM-DD", "date")
	}
	return &date, nil
}
