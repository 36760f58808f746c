package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jobboard/apiserver/types"
)

// RatingRepository handles persistence for ratings.
type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Create(ctx context.Context, rating types.Rating) (types.Rating, error) {
	rating.CreatedAt = time.Now()

	const query = `
		INSERT INTO ratings (score, comment, evaluator_id, evaluated_id, job_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rating.Score,
		rating.Comment,
		rating.EvaluatorID,
		rating.EvaluatedID,
		rating.JobID,
		rating.CreatedAt,
	).Scan(&rating.ID); err != nil {
		return types.Rating{}, mapWriteError(err)
	}
	return rating, nil
}

// Summary averages the scores userID received. A user with no ratings has
// a zero summary, not an error.
func (r *RatingRepository) Summary(ctx context.Context, userID int) (types.RatingSummary, error) {
	const query = `
		SELECT AVG(score), COUNT(1)
		FROM ratings
		WHERE evaluated_id = $1`
	var (
		avg   sql.NullFloat64
		count int
	)
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&avg, &count); err != nil {
		return types.RatingSummary{}, err
	}
	summary := types.RatingSummary{Count: count}
	if avg.Valid {
		summary.Average = avg.Float64
	}
	return summary, nil
}
