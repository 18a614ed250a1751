package models

import "time"

type Club struct {
	ID           int       `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Country      *string   `json:"country,omitempty" db:"country"`
	City         *string   `json:"city,omitempty" db:"city"`
	FederationID *int      `json:"federation_id,omitempty" db:"federation_id"`
	OwnerID      int       `json:"owner_id" db:"owner_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LogoKey      *string   `json:"-" db:"logo_key"`
	LogoURL      *string   `json:"logo_url,omitempty" db:"-"`

	Federation *Federation `json:"federation,omitempty" db:"-"`
}
