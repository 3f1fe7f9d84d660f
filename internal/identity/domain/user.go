package domain

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC encoded
	Active       bool   // deactivated users cannot authenticate
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role struct {
	ID        string
	Name      string // "admin", "teacher", "student"
	CreatedAt time.Time
}
