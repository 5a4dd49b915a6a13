package entity

import "time"

// EmailAddress is a row in `email_addresses`. Email is unique across all users.
type EmailAddress struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EmailEntry is one element of a requested email set: either ExistingEmail or NewEmail.
type EmailEntry interface {
	Address() string
	emailEntry()
}

// ExistingEmail addresses a persisted row by id and carries its desired value.
type ExistingEmail struct {
	ID    int64  `json:"id" validate:"gt=0"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// NewEmail is an address to be inserted.
type NewEmail struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (e ExistingEmail) Address() string { return e.Email }
func (e NewEmail) Address() string      { return e.Email }

func (ExistingEmail) emailEntry() {}
func (NewEmail) emailEntry()      {}
