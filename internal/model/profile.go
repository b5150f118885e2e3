package model

import "time"

type Profile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Username  *string   `json:"username" db:"username"` // Nullable until chosen
	Name      string    `json:"name" db:"name"`
	Bio       string    `json:"bio" db:"bio"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Profile) UsernameOrEmpty() string {
	if p == nil || p.Username == nil {
		return ""
	}
	return *p.Username
}
