package services

import (
	"context"
	"testing"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobStampsOwner(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)

	job, err := svc.Create(context.Background(), auth.Principal{ID: 3}, types.Job{Title: "Faxina", Description: "x", UserID: 99})
	require.NoError(t, err)
	assert.Equal(t, 3, job.UserID)
	assert.Equal(t, types.PaymentPerService, job.Payment)
}

func TestCreateJobRequiresPrincipal(t *testing.T) {
	_, err := NewJobService(newFakeJobRepo()).Create(context.Background(), auth.Principal{}, types.Job{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdateJobByNonOwnerIsForbidden(t *testing.T) {
	repo := newFakeJobRepo(types.Job{ID: 1, Title: "Pintura", UserID: 1})
	svc := NewJobService(repo)
	title := "Hacked"

	_, err := svc.Update(context.Background(), auth.Principal{ID: 2}, 1, types.JobPatch{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Zero(t, repo.updates)

	stored, _ := repo.Get(context.Background(), 1)
	assert.Equal(t, "Pintura", stored.Title)
}

func TestUpdateJobGuardRunsBeforeEmptyPatch(t *testing.T) {
	repo := newFakeJobRepo(types.Job{ID: 1, Title: "Pintura", UserID: 1})
	svc := NewJobService(repo)

	_, err := svc.Update(context.Background(), auth.Principal{ID: 2}, 1, types.JobPatch{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Update(context.Background(), auth.Principal{ID: 1}, 1, types.JobPatch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, repo.updates)
}

func TestUpdateJobByOwner(t *testing.T) {
	repo := newFakeJobRepo(types.Job{ID: 1, Title: "Pintura", Description: "Muro", UserID: 1, Payment: types.PaymentPerService})
	svc := NewJobService(repo)
	title := "Pintura externa"
	urgent := true

	job, err := svc.Update(context.Background(), auth.Principal{ID: 1}, 1, types.JobPatch{Title: &title, Urgent: &urgent})
	require.NoError(t, err)
	assert.Equal(t, "Pintura externa", job.Title)
	assert.Equal(t, "Muro", job.Description)
	assert.True(t, job.Urgent)
	assert.Equal(t, 1, job.UserID)
}

func TestUpdateMissingJobIsNotFound(t *testing.T) {
	svc := NewJobService(newFakeJobRepo())
	title := "x"

	_, err := svc.Update(context.Background(), auth.Principal{ID: 1}, 5, types.JobPatch{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteJob(t *testing.T) {
	repo := newFakeJobRepo(types.Job{ID: 1, UserID: 1}, types.Job{ID: 2, UserID: 2})
	svc := NewJobService(repo)

	_, err := svc.Delete(context.Background(), auth.Principal{ID: 1}, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	deleted, err := svc.Delete(context.Background(), auth.Principal{ID: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.ID)

	_, err = svc.Delete(context.Background(), auth.Principal{ID: 1}, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1, repo.deletes)
}

func TestSearchByCategory(t *testing.T) {
	svc := NewJobService(newFakeJobRepo(types.Job{ID: 1, Category: "jardinagem"}))

	jobs, err := svc.SearchByCategory(context.Background(), "jardinagem")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = svc.SearchByCategory(context.Background(), "encanamento")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetJob(t *testing.T) {
	svc := NewJobService(newFakeJobRepo(types.Job{ID: 1}))

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
