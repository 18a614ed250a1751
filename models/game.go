package models

import "time"

// GameType представляет вариант правил, соответствующий ENUM в БД.
type GameType string

const (
	GameTypeClassic  GameType = "classic_10"
	GameTypeExtended GameType = "extended"
	GameTypeMini     GameType = "mini"
)

// GameOutcome — терминальное состояние игры. NULL в БД означает,
// что игра ещё идёт (указатель nil в модели).
type GameOutcome string

const (
	OutcomeCiviliansWin GameOutcome = "civilians_win"
	OutcomeMafiaWin     GameOutcome = "mafia_win"
	OutcomeDraw         GameOutcome = "draw"
)

func (o GameOutcome) Valid() bool {
	switch o {
	case OutcomeCiviliansWin, OutcomeMafiaWin, OutcomeDraw:
		return true
	}
	return false
}

type Game struct {
	ID           int          `json:"id" db:"id"`
	Type         GameType     `json:"type" db:"type"`
	Outcome      *GameOutcome `json:"outcome,omitempty" db:"outcome"`
	ClubID       *int         `json:"club_id,omitempty" db:"club_id"`
	FederationID *int         `json:"federation_id,omitempty" db:"federation_id"`
	RefereeID    *int         `json:"referee_id,omitempty" db:"referee_id"`
	TableNumber  *int         `json:"table_number,omitempty" db:"table_number"`
	Comment      *string      `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	// Заполняется сервисом, не мапится напрямую
	Participations []Participation `json:"participations,omitempty" db:"-"`
}
