package services

import (
	"context"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/ownership"
	"github.com/jobboard/apiserver/types"
)

// JobRepository defines persistence operations for job posts.
type JobRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Job, int, error)
	Get(ctx context.Context, id int) (types.Job, error)
	ListByUser(ctx context.Context, userID int) ([]types.Job, error)
	ListByCategory(ctx context.Context, category string) ([]types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	Delete(ctx context.Context, id int) error
}

// JobService encapsulates job post use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) List(ctx context.Context, offset, limit int) ([]types.Job, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *JobService) Get(ctx context.Context, id int) (types.Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Job{}, notFoundAs(err, "job not found")
	}
	return job, nil
}

func (s *JobService) ListByUser(ctx context.Context, userID int) ([]types.Job, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SearchByCategory returns the jobs tagged with category. An empty result is
// reported as not found.
func (s *JobService) SearchByCategory(ctx context.Context, category string) ([]types.Job, error) {
	jobs, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, apperr.NotFound("no posts found for category")
	}
	return jobs, nil
}

// Create stores job with the principal as its owner, whatever owner the
// caller set.
func (s *JobService) Create(ctx context.Context, principal auth.Principal, job types.Job) (types.Job, error) {
	if principal.ID < 1 {
		return types.Job{}, apperr.Unauthorized("authentication required")
	}
	job.ID = 0
	job.UserID = principal.ID
	if job.Payment == "" {
		job.Payment = types.PaymentPerService
	}
	return s.repo.Create(ctx, job)
}

func (s *JobService) Update(ctx context.Context, principal auth.Principal, id int, patch types.JobPatch) (types.Job, error) {
	job, err := ownership.Authorize(ctx, "job", s.repo.Get, id, principal)
	if err != nil {
		return types.Job{}, err
	}
	if patch.Empty() {
		return types.Job{}, apperr.Validation("no updatable fields provided")
	}

	patch.Apply(&job)

	updated, err := s.repo.Update(ctx, job)
	if err != nil {
		return types.Job{}, notFoundAs(err, "job not found")
	}
	return updated, nil
}

func (s *JobService) Delete(ctx context.Context, principal auth.Principal, id int) (types.Job, error) {
	job, err := ownership.Authorize(ctx, "job", s.repo.Get, id, principal)
	if err != nil {
		return types.Job{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return types.Job{}, notFoundAs(err, "job not found")
	}
	return job, nil
}
