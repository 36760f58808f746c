// Package present turns stored records into response payloads.
//
// Payload types carry opaque ids only; internal integer keys and password
// hashes have no field to land in.
package present

import (
	"time"

	"github.com/jobboard/apiserver/types"
)

// Encoder maps internal ids to opaque ids.
type Encoder interface {
	Encode(id int) string
}

const dateLayout = "2006-01-02"

// OwnerRef is the public projection of a referenced user.
type OwnerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	CPF       *string   `json:"cpf,omitempty"`
	Number    string    `json:"number"`
	Gender    string    `json:"gender"`
	HasAvatar bool      `json:"hasAvatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type JobPayload struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Value       *float64          `json:"value,omitempty"`
	CEP         string            `json:"cep"`
	Street      string            `json:"street"`
	District    string            `json:"district"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	Number      string            `json:"number"`
	Date        *string           `json:"date,omitempty"`
	Phone       string            `json:"phone"`
	Category    string            `json:"category"`
	Payment     types.PaymentMode `json:"payment"`
	Urgent      bool              `json:"urgent"`
	User        OwnerRef          `json:"user"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type RatingPayload struct {
	ID        string    `json:"id"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	Evaluator string    `json:"evaluator"`
	Evaluated string    `json:"evaluated"`
	Job       *string   `json:"job,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func Owner(enc Encoder, id int, name string) OwnerRef {
	return OwnerRef{ID: enc.Encode(id), Name: name}
}

func User(enc Encoder, u types.User) UserPayload {
	return UserPayload{
		ID:        enc.Encode(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Number:    u.Number,
		Gender:    u.Gender,
		HasAvatar: u.ProfileImage != "",
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func Users(enc Encoder, users []types.User) []UserPayload {
	out := make([]UserPayload, 0, len(users))
	for _, u := range users {
		out = append(out, User(enc, u))
	}
	return out
}

func Job(enc Encoder, j types.Job) JobPayload {
	var date *string
	if j.Date != nil {
		formatted := j.Date.Format(dateLayout)
		date = &formatted
	}
	return JobPayload{
		ID:          enc.Encode(j.ID),
		Title:       j.Title,
		Description: j.Description,
		Value:       j.Value,
		CEP:         j.CEP,
		Street:      j.Street,
		District:    j.District,
		City:        j.City,
		State:       j.State,
		Number:      j.Number,
		Date:        date,
		Phone:       j.Phone,
		Category:    j.Category,
		Payment:     j.Payment,
		Urgent:      j.Urgent,
		User:        Owner(enc, j.UserID, j.OwnerName),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func Jobs(enc Encoder, jobs []types.Job) []JobPayload {
	out := make([]JobPayload, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, Job(enc, j))
	}
	return out
}

func Rating(enc Encoder, r types.Rating) RatingPayload {
	var job *string
	if r.JobID != nil {
		encoded := enc.Encode(*r.JobID)
		job = &encoded
	}
	return RatingPayload{
		ID:        enc.Encode(r.ID),
		Score:     r.Score,
		Comment:   r.Comment,
		Evaluator: enc.Encode(r.EvaluatorID),
		Evaluated: enc.Encode(r.EvaluatedID),
		Job:       job,
		CreatedAt: r.CreatedAt,
	}
}
