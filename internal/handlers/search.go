package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/apiserver/internal/present"
	"github.com/jobboard/apiserver/internal/services"
)

type SearchHandler struct {
	jobService *services.JobService
	codec      IDCodec
}

func NewSearchHandler(jobService *services.JobService, codec IDCodec) *SearchHandler {
	return &SearchHandler{jobService: jobService, codec: codec}
}

// SearchRouter registers search routes. The category segment is plain text,
// not an opaque id.
func SearchRouter(r chi.Router, handler *SearchHandler) {
	r.Get("/{category}", handler.ByCategory)
}

func (h *SearchHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "missing category")
		return
	}

	jobs, err := h.jobService.SearchByCategory(r.Context(), category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", present.Jobs(h.codec, jobs))
}
