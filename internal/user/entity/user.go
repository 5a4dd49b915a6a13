package entity

import (
	"encoding/json"
	"time"
)

// User represents a row in the `users` table together with its owned email addresses.
type User struct {
	ID             int64          `db:"id" json:"id"`
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	PhoneNumber    *string        `db:"phone_number" json:"phone_number"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	EmailAddresses []EmailAddress `db:"-" json:"email_addresses"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// MarshalJSON adds the derived full_name to the stored columns.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		FullName string `json:"full_name"`
	}{plain(u), u.FullName()})
}

// UserFields are the scalar, caller-editable columns of a user.
type UserFields struct {
	FirstName   string
	LastName    string
	PhoneNumber *string
}
