package types

import "time"

// PaymentMode describes how a job is paid.
type PaymentMode string

const (
	PaymentPerHour    PaymentMode = "hora"
	PaymentPerDay     PaymentMode = "dia"
	PaymentPerService PaymentMode = "servico"
)

// Valid reports whether m is one of the known payment modes.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentPerHour, PaymentPerDay, PaymentPerService:
		return true
	default:
		return false
	}
}

// Job represents a job post published by a user.
type Job struct {
	// ID is the internal identifier of the job.
	ID int `json:"-" db:"id"`

	// Title is the short headline of the job.
	Title string `json:"title" db:"title"`

	// Description is the full job description.
	Description string `json:"description" db:"description"`

	// Value is the offered payment, if any.
	Value *float64 `json:"value,omitempty" db:"value"`

	// Address fields. All optional.
	CEP      string `json:"cep" db:"cep"`
	Street   string `json:"street" db:"street"`
	District string `json:"district" db:"district"`
	City     string `json:"city" db:"city"`
	State    string `json:"state" db:"state"`
	Number   string `json:"number" db:"number"`

	// Date is the day the job should take place.
	Date *time.Time `json:"date,omitempty" db:"date"`

	// Phone is the contact phone for the job.
	Phone string `json:"phone" db:"phone"`

	// Category is the free-form tag used by search.
	Category string `json:"category" db:"category"`

	// Payment is the payment mode. Defaults to PaymentPerService.
	Payment PaymentMode `json:"payment" db:"payment"`

	// Urgent flags jobs that need to be filled quickly.
	Urgent bool `json:"urgent" db:"urgent"`

	// UserID references the owning user. Fixed at creation.
	UserID int `json:"-" db:"user_id"`

	// OwnerName is the owning user's display name, loaded by join.
	OwnerName string `json:"-" db:"owner_name"`

	// CreatedAt is the timestamp when the job was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the job.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (j Job) OwnerID() int {
	return j.UserID
}

// JobPatch lists the job fields an owner may change.
type JobPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Value       *float64     `json:"value,omitempty"`
	CEP         *string      `json:"cep,omitempty"`
	Street      *string      `json:"street,omitempty"`
	District    *string      `json:"district,omitempty"`
	City        *string      `json:"city,omitempty"`
	State       *string      `json:"state,omitempty"`
	Number      *string      `json:"number,omitempty"`
	Date        *time.Time   `json:"-"`
	Phone       *string      `json:"phone,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Payment     *PaymentMode `json:"payment,omitempty"`
	Urgent      *bool        `json:"urgent,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Value == nil && p.CEP == nil &&
		p.Street == nil && p.District == nil && p.City == nil && p.State == nil &&
		p.Number == nil && p.Date == nil && p.Phone == nil && p.Category == nil &&
		p.Payment == nil && p.Urgent == nil
}

// Apply copies the set fields of the patch onto j.
func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Value != nil {
		j.Value = p.Value
	}
	if p.CEP != nil {
		j.CEP = *p.CEP
	}
	if p.Street != nil {
		j.Street = *p.Street
	}
	if p.District != nil {
		j.District = *p.District
	}
	if p.City != nil {
		j.City = *p.City
	}
	if p.State != nil {
		j.State = *p.State
	}
	if p.Number != nil {
		j.Number = *p.Number
	}
	if p.Date != nil {
		j.Date = p.Date
	}
	if p.Phone != nil {
		j.Phone = *p.Phone
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Payment != nil {
		j.Payment = *p.Payment
	}
	if p.Urgent != nil {
		j.Urgent = *p.Urgent
	}
}
