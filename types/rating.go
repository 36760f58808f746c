package types

import "time"

// Rating is a score one user gives another, optionally about a job.
type Rating struct {
	// ID is the internal identifier of the rating.
	ID int `json:"-" db:"id"`

	// Score is the numeric grade, 0 to 5.
	Score float64 `json:"score" db:"score"`

	// Comment is an optional free-text review.
	Comment string `json:"comment" db:"comment"`

	// EvaluatorID is the authoring user. Always the authenticated principal.
	EvaluatorID int `json:"-" db:"evaluator_id"`

	// EvaluatedID is the user being rated.
	EvaluatedID int `json:"-" db:"evaluated_id"`

	// JobID optionally ties the rating to a job.
	JobID *int `json:"-" db:"job_id"`

	// CreatedAt is the timestamp when the rating was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (r Rating) OwnerID() int {
	return r.EvaluatorID
}

// RatingSummary aggregates the ratings a user received.
type RatingSummary struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"count"`
}
