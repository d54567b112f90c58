package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/exitflow/internal/offboarding/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateTenure(t *testing.T) {
	tests := []struct {
		name     string
		joining  time.Time
		lwd      time.Time
		expected domain.Tenure
	}{
		{"day of month rollback", date(2020, 3, 31), date(2023, 3, 30), domain.Tenure{Years: 2, Months: 11}},
		{"exact anniversary", date(2020, 3, 31), date(2023, 3, 31), domain.Tenure{Years: 3}},
		{"partial month dropped", date(2021, 1, 15), date(2021, 7, 14), domain.Tenure{Months: 5}},
		{"year carry", date(2019, 11, 10), date(2021, 2, 10), domain.Tenure{Years: 1, Months: 3}},
		{"same day", date(2024, 6, 1), date(2024, 6, 1), domain.Tenure{}},
		{"lwd before joining", date(2024, 6, 1), date(2024, 5, 1), domain.Tenure{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateTenure(tt.joining, tt.lwd))
		})
	}
}
