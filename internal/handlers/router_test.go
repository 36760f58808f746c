package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/hashid"
	"github.com/jobboard/apiserver/internal/services"
	"github.com/jobboard/apiserver/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t       *testing.T
	router  http.Handler
	codec   *hashid.Codec
	tokens  *auth.TokenProvider
	users   *memUsers
	jobs    *memJobs
	ratings *memRatings
	avatars *memAvatars
	events  *recordingPublisher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	codec, err := hashid.New("test-salt")
	require.NoError(t, err)
	tokens, err := auth.NewTokenProvider("test-secret", time.Hour)
	require.NoError(t, err)

	users := newMemUsers()
	jobs := newMemJobs(users)
	ratings := &memRatings{}
	avatars := newMemAvatars()
	publisher := &recordingPublisher{}

	userService := services.NewUserService(users)
	jobService := services.NewJobService(jobs)
	ratingService := services.NewRatingService(ratings, users, jobs, nil)
	avatarService := services.NewAvatarService(users, avatars)

	authMiddleware := RequireAuth(tokens)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(userService, avatarService, tokens, codec, publisher), nil)
	})
	router.Route("/posts", func(r chi.Router) {
		JobRouter(r, NewJobHandler(jobService, codec, publisher), authMiddleware, OptionalAuth(tokens))
	})
	router.Route("/search", func(r chi.Router) {
		SearchRouter(r, NewSearchHandler(jobService, codec))
	})
	router.Route("/ratings", func(r chi.Router) {
		RatingRouter(r, NewRatingHandler(ratingService, codec, publisher), authMiddleware)
	})

	return &testAPI{
		t:       t,
		router:  router,
		codec:   codec,
		tokens:  tokens,
		users:   users,
		jobs:    jobs,
		ratings: ratings,
		avatars: avatars,
		events:  publisher,
	}
}

// seedUser stores a user directly and returns it with a valid token.
func (a *testAPI) seedUser(name, email string) (types.User, string) {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(a.t, err)
	user, err := a.users.Create(context.Background(), types.User{Name: name, Email: &email, PasswordHash: string(hash)})
	require.NoError(a.t, err)
	token, err := a.tokens.Issue(user)
	require.NoError(a.t, err)
	return user, token
}

func (a *testAPI) seedJob(owner types.User, title, category string) types.Job {
	a.t.Helper()
	job, err := a.jobs.Create(context.Background(), types.Job{
		Title:       title,
		Description: "details",
		Category:    category,
		Payment:     types.PaymentPerService,
		UserID:      owner.ID,
	})
	require.NoError(a.t, err)
	return job
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func dataObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return data
}
