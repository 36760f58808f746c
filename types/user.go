package types

import "time"

// User represents an account in the marketplace.
// It contains identity, contact and audit metadata.
type User struct {
	// ID is the internal identifier of the user. It never leaves the
	// process unencoded.
	ID int `json:"-" db:"id"`

	// Name is the user's display name (first name and surname).
	Name string `json:"name" db:"name"`

	// Email is the user's email address. Unique when present.
	Email *string `json:"email,omitempty" db:"email"`

	// CPF is the user's national taxpayer number. Unique when present.
	CPF *string `json:"cpf,omitempty" db:"cpf"`

	// Number is the user's phone number.
	Number string `json:"number" db:"number"`

	// Gender is the self-declared gender, free text.
	Gender string `json:"gender" db:"gender"`

	// ProfileImage is the object storage key of the user's avatar,
	// empty when none was uploaded.
	ProfileImage string `json:"-" db:"profile_image"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerID reports the account itself as its owner.
func (u User) OwnerID() int {
	return u.ID
}

// UserPatch lists the user fields a client may change.
// Nil fields are left untouched.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	CPF    *string `json:"cpf,omitempty"`
	Number *string `json:"number,omitempty"`
	Gender *string `json:"gender,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.CPF == nil && p.Number == nil && p.Gender == nil
}

// Apply copies the set fields of the patch onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = p.Email
	}
	if p.CPF != nil {
		u.CPF = p.CPF
	}
	if p.Number != nil {
		u.Number = *p.Number
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
}
