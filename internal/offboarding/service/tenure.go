package service

import (
	"time"

	"github.com/allisson/exitflow/internal/offboarding/domain"
)

// CalculateTenure returns the whole years and months between joining and the last working day.
// A partial month is dropped: when the day of month of lastWorkingDay is before the joining
// day, one month is borrowed. A last working day before joining yields zero.
func CalculateTenure(joining, lastWorkingDay time.Time) domain.Tenure {
	y1, m1, d1 := joining.Date()
	y2, m2, d2 := lastWorkingDay.Date()

	months := (y2-y1)*12 + int(m2-m1)
	if d2 < d1 {
		months--
	}
	if months < 0 {
		return domain.Tenure{}
	}
	return domain.Tenure{Years: months / 12, Months: months % 12}
}
