package model

import "time"

// User is the identity issued by the backend auth service.
type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
}

// Account is the credential row kept by the self-hosted backend.
type Account struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *Account) User() *User {
	return &User{ID: a.ID, Email: a.Email}
}
