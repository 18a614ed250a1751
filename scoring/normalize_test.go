package scoring_test

import (
	"testing"

	"github.com/foundermafstat/mafstat-server/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"nil", nil, "0"},
		{"nil string pointer", (*string)(nil), "0"},
		{"plain decimal", "1.5", "1.5"},
		{"comma separator", "1,5", "1.5"},
		{"integer", "3", "3"},
		{"negative", "-0.7", "-0.7"},
		{"concatenated fragments", "00.500.900.202.00", "0.5"},
		{"garbage", "abc", "0"},
		{"trailing garbage", "-2.5abc", "-2.5"},
		{"leading garbage", "bonus: 0.4", "0.4"},
		{"empty string", "", "0"},
		{"whitespace", "   ", "0"},
		{"lone minus", "-", "0"},
		{"lone dot", ".", "0"},
		{"bare fraction", ".25", "0.25"},
		{"float64 input", 0.3, "0.3"},
		{"int input", 2, "2"},
		{"comma fragments", "0,4 + 0,2", "0.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			got := scoring.Normalize(tt.raw)
			assert.True(t, want.Equal(got), "Normalize(%v) = %s, want %s", tt.raw, got, want)
		})
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	// Ни одно значение не должно приводить к панике или не-числу.
	inputs := []any{nil, "", "....", "--", "1.2.3.4", ",,", "NaN", "1e10000", struct{}{}}
	for _, raw := range inputs {
		assert.NotPanics(t, func() { _ = scoring.Normalize(raw) })
	}
}
