package longevity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biotwin/internal/types"
)

func TestCalculateLongevityScore(t *testing.T) {
	tests := []struct {
		name   string
		latest types.HealthRecord
		want   int
	}{
		{"all zero is base score", rec(0, 0, 0, 0), 50},
		{"ideal caps at 100", rec(12000, 65, 8, 60), 100},
		{"middle bands", rec(0, 74, 6.6, 0), 50 + 20 + 20},
		{"outer bands", rec(0, 84, 6.1, 21), 50 + 15 + 15 + 10},
		{"sleep over nine earns shoulder credit", rec(0, 0, 10, 0), 70},
		{"heart rate outside every band", rec(0, 86, 0, 0), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateLongevityScore([]types.HealthRecord{tt.latest}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateLongevityScore_IgnoresBiomarkers(t *testing.T) {
	h := week(rec(5000, 72, 6.5, 35))

	without, err := CalculateLongevityScore(h, nil)
	require.NoError(t, err)
	with, err := CalculateLongevityScore(h, &types.BiomarkerData{Cortisol: 40, VitaminD: 5})
	require.NoError(t, err)

	assert.Equal(t, without, with)
}

func TestCalculateLongevityScore_EmptyHistory(t *testing.T) {
	_, err := CalculateLongevityScore(nil, nil)
	assert.ErrorIs(t, err, types.ErrEmptyHistory)
}
