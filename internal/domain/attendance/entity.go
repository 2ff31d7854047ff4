package attendance

import (
	"time"
)

// Status is the per-day attendance state of one user.
type Status string

const (
	StatusPresent       Status = "PRESENT"
	StatusLate          Status = "LATE"
	StatusEarlyLeave    Status = "EARLY_LEAVE"
	StatusOvertime      Status = "OVERTIME"
	StatusAbsent        Status = "ABSENT"
	StatusHalfDayAM     Status = "ON_HALF_DAY_AM"
	StatusHalfDayPM     Status = "ON_HALF_DAY_PM"
	StatusBusinessTrip  Status = "ON_BUSINESS_TRIP"
	StatusAnnualLeave   Status = "ON_ANNUAL_LEAVE"
	StatusSickLeave     Status = "ON_SICK_LEAVE"
	StatusOfficialLeave Status = "ON_OFFICIAL_LEAVE"
	StatusSpecialLeave  Status = "ON_SPECIAL_LEAVE"
)

// AllStatuses lists every assignable status. Statistics must report a value
// for each of these even when unobserved.
var AllStatuses = []Status{
	StatusPresent,
	StatusLate,
	StatusEarlyLeave,
	StatusOvertime,
	StatusAbsent,
	StatusHalfDayAM,
	StatusHalfDayPM,
	StatusBusinessTrip,
	StatusAnnualLeave,
	StatusSickLeave,
	StatusOfficialLeave,
	StatusSpecialLeave,
}

// Working time rules. Times are wall-clock on the record's date.
const (
	WorkStartHour        = 9  // check-in later than 09:00 is LATE
	HalfDayBoundaryHour  = 12 // AM/PM half-day boundary
	CheckInDeadlineHour  = 18 // no check-in after 18:00
	OvertimeStartHour    = 18 // overtime accrues from 18:00
	OvertimeGraceMinutes = 10 // check-out within 18:00-18:10 is not overtime

	LunchDeductionHours = 1.0
)

// Attendance is one user's attendance facts for one calendar day.
// At most one record exists per (UserID, Date); records are created lazily
// by check-in, leave approval, or the absentee sweep.
type Attendance struct {
	ID              string
	UserID          string
	Date            time.Time // day resolution, local wall clock
	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	OvertimeStart   *time.Time
	OvertimeEnd     *time.Time
	WorkingHours    *float64
	OvertimeHours   *float64
	Status          Status
	Reason          *string
	LeaveType       *string
	LinkedRequestID *string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined from the user directory for admin projections
	UserName       *string
	DepartmentName *string
}

// IsLeaveStatus reports whether s was produced by leave materialization
// rather than by the user's own clock events.
func (s Status) IsLeaveStatus() bool {
	switch s {
	case StatusHalfDayAM, StatusHalfDayPM, StatusBusinessTrip,
		StatusAnnualLeave, StatusSickLeave, StatusOfficialLeave,
		StatusSpecialLeave, StatusEarlyLeave:
		return true
	}
	return false
}

// CanCheckIn decides whether a check-in at now is permitted on a record that
// already carries status s. The table is exhaustive over leave statuses so a
// new status forces a visible decision here instead of a default fallthrough.
func CanCheckIn(s Status, now time.Time) bool {
	noon := time.Date(now.Year(), now.Month(), now.Day(), HalfDayBoundaryHour, 0, 0, 0, now.Location())

	switch s {
	case StatusHalfDayAM:
		// morning off; may come in for the afternoon
		return !now.Before(noon)
	case StatusHalfDayPM:
		// afternoon off; must come in before noon
		return now.Before(noon)
	case StatusBusinessTrip:
		return true
	case StatusEarlyLeave:
		// works the morning, leaves early
		return true
	case StatusAnnualLeave, StatusSickLeave, StatusOfficialLeave, StatusSpecialLeave:
		return false
	}
	return false
}

// HoursBetween returns the fractional hours from a to b, never negative.
func HoursBetween(a, b time.Time) float64 {
	h := b.Sub(a).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// DayOf truncates t to its calendar day in t's location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
