package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessAssignmentRisk(t *testing.T) {
	today := monday()
	tests := []struct {
		name      string
		deadline  *time.Time
		estimated float64
		ratio     float64
		want      RiskLevel
		none      bool
	}{
		{"no deadline", nil, 40, 120, "", true},
		{"overdue", ptrDay(today.AddDate(0, 0, -3)), 4, 10, RiskOverdue, false},
		{"due today", ptrDay(today), 4, 10, RiskCritical, false},
		{"estimate exceeds working time", ptrDay(today.AddDate(0, 0, 2)), 20, 10, RiskHigh, false},
		{"assignee overloaded", ptrDay(today.AddDate(0, 0, 10)), 4, 95, RiskMedium, false},
		{"tight deadline", ptrDay(today.AddDate(0, 0, 3)), 4, 10, RiskMedium, false},
		{"comfortable", ptrDay(today.AddDate(0, 0, 10)), 4, 10, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := AssessAssignmentRisk(tt.deadline, tt.estimated, tt.ratio, today)
			if tt.none {
				assert.Nil(t, risk)
				return
			}
			require.NotNil(t, risk)
			assert.Equal(t, tt.want, risk.Level)
			assert.NotEmpty(t, risk.Reason)
		})
	}
}

func TestAssessScheduleRisk(t *testing.T) {
	today := monday()

	t.Run("unscheduled remainder past deadline", func(t *testing.T) {
		risk := AssessScheduleRisk(ptrDay(today.AddDate(0, 0, -1)), 10, 6, 4, today)
		require.NotNil(t, risk)
		assert.Equal(t, RiskOverdue, risk.Level)
	})

	t.Run("nothing scheduled before deadline", func(t *testing.T) {
		risk := AssessScheduleRisk(ptrDay(today.AddDate(0, 0, 4)), 10, 0, 10, today)
		require.NotNil(t, risk)
		assert.Equal(t, RiskHigh, risk.Level)
	})

	t.Run("partial remainder before deadline", func(t *testing.T) {
		risk := AssessScheduleRisk(ptrDay(today.AddDate(0, 0, 4)), 10, 6, 4, today)
		require.NotNil(t, risk)
		assert.Equal(t, RiskMedium, risk.Level)
	})

	t.Run("fully scheduled but underplanned for tomorrow", func(t *testing.T) {
		risk := AssessScheduleRisk(ptrDay(today.AddDate(0, 0, 1)), 10, 7, 0, today)
		require.NotNil(t, risk)
		assert.Equal(t, RiskHigh, risk.Level)
	})

	t.Run("no deadline with remainder is low", func(t *testing.T) {
		risk := AssessScheduleRisk(nil, 10, 6, 4, today)
		require.NotNil(t, risk)
		assert.Equal(t, RiskLow, risk.Level)
	})

	t.Run("clean outcomes carry no risk", func(t *testing.T) {
		assert.Nil(t, AssessScheduleRisk(nil, 10, 10, 0, today))
		assert.Nil(t, AssessScheduleRisk(ptrDay(today.AddDate(0, 0, 5)), 10, 10, 0, today))
	})

	t.Run("float residue below epsilon ignored", func(t *testing.T) {
		assert.Nil(t, AssessScheduleRisk(ptrDay(today.AddDate(0, 0, 5)), 10, 9.95, 0.05, today))
	})
}

func TestRiskLevelRank(t *testing.T) {
	assert.Less(t, RiskOverdue.Rank(), RiskCritical.Rank())
	assert.Less(t, RiskCritical.Rank(), RiskHigh.Rank())
	assert.Less(t, RiskHigh.Rank(), RiskMedium.Rank())
	assert.Less(t, RiskMedium.Rank(), RiskLow.Rank())
	assert.Greater(t, RiskLevel("unknown").Rank(), RiskLow.Rank())
}
