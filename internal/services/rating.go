package services

import (
	"context"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/logging"
	"github.com/jobboard/apiserver/types"
)

// RatingRepository defines persistence operations for ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating types.Rating) (types.Rating, error)
	Summary(ctx context.Context, userID int) (types.RatingSummary, error)
}

// RatingCache stores per-user rating summaries. Implementations may be
// backed by an external cache; errors are treated as misses.
type RatingCache interface {
	Get(ctx context.Context, userID int) (types.RatingSummary, bool, error)
	Set(ctx context.Context, userID int, summary types.RatingSummary) error
	Invalidate(ctx context.Context, userID int) error
}

type userGetter interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

type jobGetter interface {
	Get(ctx context.Context, id int) (types.Job, error)
}

// RatingService encapsulates rating use-cases.
type RatingService struct {
	repo  RatingRepository
	users userGetter
	jobs  jobGetter
	cache RatingCache
}

// NewRatingService builds a RatingService. cache may be nil.
func NewRatingService(repo RatingRepository, users userGetter, jobs jobGetter, cache RatingCache) *RatingService {
	return &RatingService{repo: repo, users: users, jobs: jobs, cache: cache}
}

// Create records a rating authored by principal. The evaluated user and the
// optional job must exist.
func (s *RatingService) Create(ctx context.Context, principal auth.Principal, rating types.Rating) (types.Rating, error) {
	if principal.ID < 1 {
		return types.Rating{}, apperr.Unauthorized("authentication required")
	}
	if rating.EvaluatedID < 1 {
		return types.Rating{}, apperr.MissingFields("measuredId")
	}
	if rating.Score < 0 || rating.Score > 5 {
		return types.Rating{}, apperr.Validation("score must be between 0 and 5", "score")
	}

	if _, err := s.users.GetByID(ctx, rating.EvaluatedID); err != nil {
		return types.Rating{}, notFoundAs(err, "evaluated user not found")
	}
	if rating.JobID != nil {
		if _, err := s.jobs.Get(ctx, *rating.JobID); err != nil {
			return types.Rating{}, notFoundAs(err, "job not found")
		}
	}

	rating.ID = 0
	rating.EvaluatorID = principal.ID
	created, err := s.repo.Create(ctx, rating)
	if err != nil {
		return types.Rating{}, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rating.EvaluatedID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("user_id", rating.EvaluatedID).Msg("rating cache invalidate failed")
		}
	}
	return created, nil
}

// Summary returns the average score userID received, zero when none.
func (s *RatingService) Summary(ctx context.Context, userID int) (types.RatingSummary, error) {
	if s.cache != nil {
		summary, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("user_id", userID).Msg("rating cache read failed")
		} else if ok {
			return summary, nil
		}
	}

	summary, err := s.repo.Summary(ctx, userID)
	if err != nil {
		return types.RatingSummary{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, summary); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("user_id", userID).Msg("rating cache write failed")
		}
	}
	return summary, nil
}
