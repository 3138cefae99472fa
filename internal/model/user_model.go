package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never JSON-encode

	IsVerified bool `json:"is_verified"`

	// Present only while a verification is pending; cleared on success.
	VerificationToken        *string    `json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
