package business

import "time"

// Cadence is the declared reporting rhythm
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// Months returns the period length in months
func (c Cadence) Months() int {
	switch c {
	case CadenceMonthly:
		return 1
	case CadenceQuarterly:
		return 3
	case CadenceYearly:
		return 12
	}
	return 0
}

// FilingLag describes how a due date derives from a period end. It is
// jurisdiction configuration, not a hardcoded rule: due dates differ per
// report kind and cadence.
//
// The due date is computed from the first day of the month the period ends in,
// advanced by Months. With SnapToMonthEnd the due date is the last day of that
// month; otherwise it is DayOfMonth of that month.
type FilingLag struct {
	Months         int  `json:"months"`
	DayOfMonth     int  `json:"day_of_month,omitempty"`
	SnapToMonthEnd bool `json:"snap_to_month_end"`
}

// DueDateFor computes the filing due date for a period ending on periodEnd.
// The month arithmetic starts from the first day of the end month so that
// AddDate never overflows into the wrong month (Jan 31 plus one month is
// Mar 3, not Feb 28).
func (l FilingLag) DueDateFor(periodEnd time.Time) time.Time {
	base := time.Date(periodEnd.Year(), periodEnd.Month(), 1, 0, 0, 0, 0, time.UTC)
	due := base.AddDate(0, l.Months, 0)
	if l.SnapToMonthEnd {
		return due.AddDate(0, 1, -1)
	}
	return time.Date(due.Year(), due.Month(), l.DayOfMonth, 0, 0, 0, 0, time.UTC)
}

// ReportPeriod is one reporting window with its filing due date
type ReportPeriod struct {
	Start   time.Time `json:"period_start"`
	End     time.Time `json:"period_end"`
	DueDate time.Time `json:"due_date"`
	Label   string    `json:"period_label"`
	Year    int       `json:"year"`
}

// stripTime normalizes to a calendar date so day arithmetic never drifts with
// time-of-day or timezone offsets.
func stripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether today is past the due date
func (p ReportPeriod) IsOverdue(today time.Time) bool {
	return stripTime(today).After(stripTime(p.DueDate))
}

// IsDueSoon reports whether the due date is within the next 7 calendar days
// (inclusive of today).
func (p ReportPeriod) IsDueSoon(today time.Time) bool {
	days := int(stripTime(p.DueDate).Sub(stripTime(today)).Hours() / 24)
	return days >= 0 && days <= 7
}
