package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Rating struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	OwnerID     int        `json:"owner_id" db:"owner_id"`
	ClubID      *int       `json:"club_id,omitempty" db:"club_id"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	Owner *User `json:"owner,omitempty" db:"-"`
	Club  *Club `json:"club,omitempty" db:"-"`
}

// RatingMember — строка членства (rating_id, game_id); единственный
// авторитетный вход, определяющий область пересчёта рейтинга.
type RatingMember struct {
	RatingID  int       `json:"rating_id" db:"rating_id"`
	GameID    int       `json:"game_id" db:"game_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RatingResult — производный агрегат по игроку. Строки никогда не
// изменяются по отдельности: движок пересчёта заменяет весь набор
// целиком внутри одной транзакции.
type RatingResult struct {
	ID           int             `json:"id" db:"id"`
	RatingID     int             `json:"rating_id" db:"rating_id"`
	PlayerID     int             `json:"player_id" db:"player_id"`
	Points       decimal.Decimal `json:"points" db:"points"`
	GamesPlayed  int             `json:"games_played" db:"games_played"`
	Wins         int             `json:"wins" db:"wins"`
	CivilianWins int             `json:"civilian_wins" db:"civilian_wins"`
	MafiaWins    int             `json:"mafia_wins" db:"mafia_wins"`
	DonGames     int             `json:"don_games" db:"don_games"`
	SheriffGames int             `json:"sheriff_games" db:"sheriff_games"`
	FirstOuts    int             `json:"first_outs" db:"first_outs"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Player *User `json:"player,omitempty" db:"-"`
}
