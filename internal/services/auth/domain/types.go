// Package domain holds auth types independent of transport or storage
package domain

import (
	"context"
	"time"
)

// User is an account created on first sign in with the external identity provider
type User struct {
	ID        string    `json:"_id" example:"01929a3e-5c1b-7e2f-9d1a-3b5c7e9f1a2b"`
	GoogleID  string    `json:"googleId" example:"108234567890123456789"`
	Email     string    `json:"email" example:"ada@example.com"`
	Name      string    `json:"name" example:"Ada Lovelace"`
	Picture   string    `json:"picture,omitempty" example:"https://lh3.googleusercontent.com/a/x"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is what the identity provider tells us about a person
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// UserPort is the user surface the admin tooling and handlers use
type UserPort interface {
	Upsert(ctx context.Context, p Profile) (User, error)
	Me(ctx context.Context, id string) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
}
