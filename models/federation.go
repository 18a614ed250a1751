package models

import "time"

type Federation struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	URL         *string   `json:"url,omitempty" db:"url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
