package models

import "time"

type User struct {
	ID        int       `json:"id" db:"id"`
	Nickname  string    `json:"nickname" db:"nickname"`
	FirstName *string   `json:"first_name,omitempty" db:"first_name"`
	LastName  *string   `json:"last_name,omitempty" db:"last_name"`
	ClubID    *int      `json:"club_id,omitempty" db:"club_id"`
	Country   *string   `json:"country,omitempty" db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	AvatarKey *string   `json:"-" db:"avatar_key"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Club *Club `json:"club,omitempty" db:"-"`
}
