package domain

import "time"

// User is an account that owns recipes, tags and ingredients.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touch updates UpdatedAt.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}
