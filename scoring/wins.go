package scoring

import "github.com/foundermafstat/mafstat-server/models"

// Wins сообщает, выиграло ли место с данной ролью при данном исходе.
// Ничья и незавершённая игра (outcome == nil) — поражение для всех ролей.
func Wins(role models.Role, outcome *models.GameOutcome) bool {
	if outcome == nil {
		return false
	}
	switch *outcome {
	case models.OutcomeCiviliansWin:
		return role == models.RoleCivilian || role == models.RoleSheriff
	case models.OutcomeMafiaWin:
		return role == models.RoleMafia || role == models.RoleDon
	}
	return false
}

// MafiaSide сообщает, играет ли роль за мафию.
func MafiaSide(role models.Role) bool {
	return role == models.RoleMafia || role == models.RoleDon
}
