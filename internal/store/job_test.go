package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jobboard/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobColumnNames = []string{
	"id", "title", "description", "value", "cep", "street", "district", "city", "state",
	"number", "date", "phone", "category", "payment", "urgent", "user_id", "name",
	"created_at", "updated_at",
}

func TestJobGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)
	now := time.Now()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM jobs j\s+JOIN users u ON u.id = j.user_id\s+WHERE j.id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(jobColumnNames).AddRow(
			7, "Pintura", "Pintar muro", 250.0, "01001-000", "Rua A", "Centro", "Sao Paulo", "SP",
			"10", day, "11999", "obras", "dia", true, 2, "Bruno", now, now,
		))

	job, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, job.UserID)
	assert.Equal(t, "Bruno", job.OwnerName)
	assert.Equal(t, types.PaymentPerDay, job.Payment)
	require.NotNil(t, job.Value)
	assert.Equal(t, 250.0, *job.Value)
	require.NotNil(t, job.Date)
	assert.True(t, job.Urgent)
}

func TestJobGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`WHERE j.id = \$1`).WithArgs(1).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobCreateDefaultsPayment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`INSERT INTO jobs`).
		WithArgs("Faxina", "Limpeza geral", nil, "", "", "", "", "", "", nil, "", "limpeza", "servico", false, 3,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(11, "Clara"))

	job, err := repo.Create(context.Background(), types.Job{
		Title:       "Faxina",
		Description: "Limpeza geral",
		Category:    "limpeza",
		UserID:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, job.ID)
	assert.Equal(t, "Clara", job.OwnerName)
	assert.Equal(t, types.PaymentPerService, job.Payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobListByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)
	now := time.Now()

	mock.ExpectQuery(`WHERE j.category = \$1`).
		WithArgs("jardinagem").
		WillReturnRows(sqlmock.NewRows(jobColumnNames).AddRow(
			1, "Poda", "Podar arvores", nil, "", "", "", "", "", "", nil, "", "jardinagem", "hora", false, 4, "Davi", now, now,
		))

	jobs, err := repo.ListByCategory(context.Background(), "jardinagem")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Nil(t, jobs[0].Value)
	assert.Nil(t, jobs[0].Date)
}

func TestJobListByUserEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`WHERE j.user_id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(jobColumnNames))

	jobs, err := repo.ListByUser(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestJobDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectExec(`DELETE FROM jobs WHERE id = \$1`).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM jobs WHERE id = \$1`).WithArgs(6).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), ErrNotFound)
}

func TestJobUpdateDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)
	boom := errors.New("db down")

	mock.ExpectExec(`UPDATE jobs`).WillReturnError(boom)

	_, err := repo.Update(context.Background(), types.Job{ID: 1, Title: "x", Payment: types.PaymentPerHour})
	assert.ErrorIs(t, err, boom)
}
