package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/apiserver/internal/metrics"
)

// IDCodec converts between internal ids and the opaque ids clients see.
type IDCodec interface {
	Encode(id int) string
	Decode(code string) (int, bool)
}

type idContextKey string

// DecodeID resolves the opaque id in the chi URL parameter param. A missing
// parameter is answered with 400 and an undecodable one with 404; neither
// reaches next. On success the parameter is rewritten to the decimal id and
// the id is stored in the request context for pathID.
func DecodeID(codec IDCodec, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(chi.URLParam(r, param))
			if raw == "" {
				metrics.IDDecodeFailures.WithLabelValues(param, "missing").Inc()
				writeError(w, http.StatusBadRequest, "missing id parameter")
				return
			}

			id, ok := codec.Decode(raw)
			if !ok {
				metrics.IDDecodeFailures.WithLabelValues(param, "invalid").Inc()
				writeError(w, http.StatusNotFound, "resource not found")
				return
			}

			setURLParam(r, param, strconv.Itoa(id))
			ctx := context.WithValue(r.Context(), idContextKey(param), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// pathID returns the id DecodeID resolved for param, or 0 when the route
// was not wrapped.
func pathID(r *http.Request, param string) int {
	id, _ := r.Context().Value(idContextKey(param)).(int)
	return id
}

func setURLParam(r *http.Request, key, value string) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return
	}
	// Later entries win when nested routers repeat a key.
	for i := len(rctx.URLParams.Keys) - 1; i >= 0; i-- {
		if rctx.URLParams.Keys[i] == key {
			rctx.URLParams.Values[i] = value
			return
		}
	}
}
