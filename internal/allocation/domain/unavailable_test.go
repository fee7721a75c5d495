package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableBlockHours(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    float64
		wantErr bool
	}{
		{"afternoon block", "13:00", "15:00", 2, false},
		{"half hour", "09:00", "09:30", 0.5, false},
		{"full day", "00:00", "24:00", 24, false},
		{"seconds tolerated", "13:00:00", "15:30:00", 2.5, false},
		{"garbage start", "nope", "15:00", 0, true},
		{"garbage end", "13:00", "late", 0, true},
		{"missing colon", "1300", "15:00", 0, true},
		{"end before start", "15:00", "13:00", 0, true},
		{"zero length", "13:00", "13:00", 0, true},
		{"hour out of range", "25:00", "26:00", 0, true},
		{"minute out of range", "13:75", "15:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := UnavailableBlock{StartTime: tt.start, EndTime: tt.end}
			hours, err := block.Hours()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, hours, 1e-9)
		})
	}
}
