package model

import "time"

// Roles known to the API. Only RoleAdmin may update or delete contacts.
const (
	RoleAdmin = "ADMIN"
	RoleUsual = "USUAL"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
