package report

import (
	"fmt"
	"time"
)

// Period is the payroll month a controller report covers.
type Period struct {
	Month int
	Year  int
}

// FirstDay is the transaction date used for every posting of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Label is the human readable form, e.g. "March 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", time.Month(p.Month).String(), p.Year)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
