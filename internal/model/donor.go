package model

import (
	"time"

	"github.com/google/uuid"
)

// Donor is a registered blood donor. Donors start unverified and only
// become eligible for emergency alerts once an admin verifies them.
type Donor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	BloodGroup    string    `db:"blood_group" json:"blood_group"`
	Address       string    `db:"address" json:"address,omitempty"`
	City          string    `db:"city" json:"city"`
	State         string    `db:"state" json:"state"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	PhoneVerified bool      `db:"phone_verified" json:"phone_verified"`
	Verified      bool      `db:"verified" json:"verified"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// RecipientCandidate is the dispatch-facing view of a donor: just enough
// to address and personalize one alert. Dispatch never mutates it.
type RecipientCandidate struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// Recipient returns the candidate view of the donor.
func (d *Donor) Recipient() RecipientCandidate {
	return RecipientCandidate{
		ID:    d.ID,
		Name:  d.Name,
		Email: d.Email,
		Phone: d.Phone,
	}
}
