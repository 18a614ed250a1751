package scoring_test

import (
	"testing"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/scoring"
	"github.com/stretchr/testify/assert"
)

func outcomePtr(o models.GameOutcome) *models.GameOutcome { return &o }

func TestWinsMatrix(t *testing.T) {
	civWin := outcomePtr(models.OutcomeCiviliansWin)
	mafWin := outcomePtr(models.OutcomeMafiaWin)
	draw := outcomePtr(models.OutcomeDraw)

	tests := []struct {
		role    models.Role
		outcome *models.GameOutcome
		want    bool
	}{
		{models.RoleCivilian, civWin, true},
		{models.RoleSheriff, civWin, true},
		{models.RoleMafia, civWin, false},
		{models.RoleDon, civWin, false},

		{models.RoleCivilian, mafWin, false},
		{models.RoleSheriff, mafWin, false},
		{models.RoleMafia, mafWin, true},
		{models.RoleDon, mafWin, true},

		{models.RoleCivilian, draw, false},
		{models.RoleSheriff, draw, false},
		{models.RoleMafia, draw, false},
		{models.RoleDon, draw, false},

		{models.RoleCivilian, nil, false},
		{models.RoleSheriff, nil, false},
		{models.RoleMafia, nil, false},
		{models.RoleDon, nil, false},
	}

	for _, tt := range tests {
		got := scoring.Wins(tt.role, tt.outcome)
		assert.Equal(t, tt.want, got, "Wins(%s, %v)", tt.role, tt.outcome)
	}
}

func TestMafiaSide(t *testing.T) {
	assert.True(t, scoring.MafiaSide(models.RoleMafia))
	assert.True(t, scoring.MafiaSide(models.RoleDon))
	assert.False(t, scoring.MafiaSide(models.RoleCivilian))
	assert.False(t, scoring.MafiaSide(models.RoleSheriff))
}
