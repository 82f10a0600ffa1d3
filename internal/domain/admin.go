package domain

import "time"

// Admin is an operator allowed to manage student records.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
