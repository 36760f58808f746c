package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobboard/apiserver/types"
)

const jobSelect = `
		SELECT j.id, j.title, j.description, j.value, j.cep, j.street, j.district, j.city, j.state,
			j.number, j.date, j.phone, j.category, j.payment, j.urgent, j.user_id, u.name,
			j.created_at, j.updated_at
		FROM jobs j
		JOIN users u ON u.id = j.user_id`

// JobRepository handles persistence for job posts.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) List(ctx context.Context, offset, limit int) ([]types.Job, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM jobs`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = jobSelect + `
		ORDER BY j.urgent DESC, j.created_at DESC, j.id DESC
		OFFSET $1 LIMIT $2`
	jobs, err := r.query(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *JobRepository) Get(ctx context.Context, id int) (types.Job, error) {
	const query = jobSelect + `
		WHERE j.id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) ListByUser(ctx context.Context, userID int) ([]types.Job, error) {
	const query = jobSelect + `
		WHERE j.user_id = $1
		ORDER BY j.created_at DESC, j.id DESC`
	return r.query(ctx, query, userID)
}

func (r *JobRepository) ListByCategory(ctx context.Context, category string) ([]types.Job, error) {
	const query = jobSelect + `
		WHERE j.category = $1
		ORDER BY j.urgent DESC, j.created_at DESC, j.id DESC`
	return r.query(ctx, query, category)
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Payment == "" {
		job.Payment = types.PaymentPerService
	}

	const query = `
		INSERT INTO jobs (title, description, value, cep, street, district, city, state, number,
			date, phone, category, payment, urgent, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, (SELECT name FROM users WHERE id = $15)`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.Value,
		job.CEP,
		job.Street,
		job.District,
		job.City,
		job.State,
		job.Number,
		job.Date,
		job.Phone,
		job.Category,
		string(job.Payment),
		job.Urgent,
		job.UserID,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID, &job.OwnerName); err != nil {
		return types.Job{}, mapWriteError(err)
	}
	return job, nil
}

// Update writes every mutable column of job. Ownership is never changed.
func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	job.UpdatedAt = time.Now()

	const query = `
		UPDATE jobs
		SET title = $1,
			description = $2,
			value = $3,
			cep = $4,
			street = $5,
			district = $6,
			city = $7,
			state = $8,
			number = $9,
			date = $10,
			phone = $11,
			category = $12,
			payment = $13,
			urgent = $14,
			updated_at = $15
		WHERE id = $16`
	result, err := r.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.Value,
		job.CEP,
		job.Street,
		job.District,
		job.City,
		job.State,
		job.Number,
		job.Date,
		job.Phone,
		job.Category,
		string(job.Payment),
		job.Urgent,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return types.Job{}, mapWriteError(err)
	}
	if err := expectAffected(result); err != nil {
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *JobRepository) query(ctx context.Context, query string, args ...any) ([]types.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]types.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanJob(row rowScanner) (types.Job, error) {
	var (
		job     types.Job
		value   sql.NullFloat64
		date    sql.NullTime
		payment string
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&value,
		&job.CEP,
		&job.Street,
		&job.District,
		&job.City,
		&job.State,
		&job.Number,
		&date,
		&job.Phone,
		&job.Category,
		&payment,
		&job.Urgent,
		&job.UserID,
		&job.OwnerName,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return types.Job{}, err
	}
	if value.Valid {
		job.Value = &value.Float64
	}
	if date.Valid {
		job.Date = &date.Time
	}
	job.Payment = types.PaymentMode(payment)
	return job, nil
}
