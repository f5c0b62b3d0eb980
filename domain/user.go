package domain

import "github.com/google/uuid"

// User is an authenticated principal.
type User struct {
	ID           uuid.UUID `yaml:"id" json:"id"`
	Username     string    `yaml:"username" json:"username"`
	PasswordHash string    `yaml:"passwordHash" json:"-"`
}
