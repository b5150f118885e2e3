package model

import "time"

type PortfolioItem struct {
	ID           string    `json:"id,omitempty" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	ExternalLink string    `json:"external_link" db:"external_link"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at,omitzero" db:"created_at"`
}
