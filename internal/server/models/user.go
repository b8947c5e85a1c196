// Package models defines server-side data models persisted in PostgreSQL.
package models

import "time"

// User is an account. PasswordHash is an Argon2id PHC string.
type User struct {
	ID           string
	UserName     string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
