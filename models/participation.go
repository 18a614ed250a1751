package models

// Role представляет роль игрока за столом, соответствует ENUM в БД.
type Role string

const (
	RoleCivilian Role = "civilian"
	RoleSheriff  Role = "sheriff"
	RoleMafia    Role = "mafia"
	RoleDon      Role = "don"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCivilian, RoleSheriff, RoleMafia, RoleDon:
		return true
	}
	return false
}

// Participation — одно место за столом в одной игре.
// BonusRaw приходит из формы ведущего как есть и может быть
// некорректным числом; нормализуется только при пересчёте рейтинга.
type Participation struct {
	ID         int     `json:"id" db:"id"`
	GameID     int     `json:"game_id" db:"game_id"`
	PlayerID   int     `json:"player_id" db:"player_id"`
	Role       Role    `json:"role" db:"role"`
	SlotNumber int     `json:"slot_number" db:"slot_number"`
	Fouls      int     `json:"fouls" db:"fouls"`
	BonusRaw   *string `json:"bonus_raw,omitempty" db:"bonus_raw"`

	Player *User `json:"player,omitempty" db:"-"`
}
