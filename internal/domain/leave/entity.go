package leave

import (
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
)

// LeaveType classifies a leave request.
type LeaveType string

const (
	TypeAnnual       LeaveType = "ANNUAL"
	TypeSick         LeaveType = "SICK"
	TypeHalfDayAM    LeaveType = "HALF_DAY_AM"
	TypeHalfDayPM    LeaveType = "HALF_DAY_PM"
	TypeEarlyLeave   LeaveType = "EARLY_LEAVE"
	TypeBusinessTrip LeaveType = "BUSINESS_TRIP"
	TypeOfficial     LeaveType = "OFFICIAL"
	TypeMarriage     LeaveType = "MARRIAGE"
	TypeParental     LeaveType = "PARENTAL"
	TypeBereavement  LeaveType = "BEREAVEMENT"
)

// AllLeaveTypes lists every accepted leave type.
var AllLeaveTypes = []LeaveType{
	TypeAnnual,
	TypeSick,
	TypeHalfDayAM,
	TypeHalfDayPM,
	TypeEarlyLeave,
	TypeBusinessTrip,
	TypeOfficial,
	TypeMarriage,
	TypeParental,
	TypeBereavement,
}

// NoticeRequiredDays is the advance notice, in business days, required for
// plannable leave types.
const NoticeRequiredDays = 3

// RequiresNotice reports whether t must be submitted NoticeRequiredDays
// business days ahead.
func (t LeaveType) RequiresNotice() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeMarriage, TypeParental, TypeBereavement:
		return true
	}
	return false
}

// IsHalfDay reports whether t is an AM/PM half-day sub-type.
func (t LeaveType) IsHalfDay() bool {
	return t == TypeHalfDayAM || t == TypeHalfDayPM
}

// AttendanceStatus maps a leave type to the attendance status its approval
// materializes. The table is exhaustive; an unknown type returns false so
// adding a leave type forces a visible update here.
func (t LeaveType) AttendanceStatus() (attendance.Status, bool) {
	switch t {
	case TypeAnnual:
		return attendance.StatusAnnualLeave, true
	case TypeSick:
		return attendance.StatusSickLeave, true
	case TypeHalfDayAM:
		return attendance.StatusHalfDayAM, true
	case TypeHalfDayPM:
		return attendance.StatusHalfDayPM, true
	case TypeEarlyLeave:
		return attendance.StatusEarlyLeave, true
	case TypeBusinessTrip:
		return attendance.StatusBusinessTrip, true
	case TypeOfficial:
		return attendance.StatusOfficialLeave, true
	case TypeMarriage, TypeParental, TypeBereavement:
		return attendance.StatusSpecialLeave, true
	}
	return "", false
}

// DisplayName is the human-readable name written as the record reason for
// special leave types.
func (t LeaveType) DisplayName() string {
	switch t {
	case TypeAnnual:
		return "Annual Leave"
	case TypeSick:
		return "Sick Leave"
	case TypeHalfDayAM:
		return "Half-Day Leave (AM)"
	case TypeHalfDayPM:
		return "Half-Day Leave (PM)"
	case TypeEarlyLeave:
		return "Early Leave"
	case TypeBusinessTrip:
		return "Business Trip"
	case TypeOfficial:
		return "Official Leave"
	case TypeMarriage:
		return "Marriage Leave"
	case TypeParental:
		return "Parental Leave"
	case TypeBereavement:
		return "Bereavement Leave"
	}
	return string(t)
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID        string
	UserID    string
	LeaveType LeaveType

	StartDate time.Time
	EndDate   time.Time
	StartTime *time.Time
	EndTime   *time.Time

	Reason string

	ApprovalStatus  ApprovalStatus
	ApprovalComment *string
	ApproverID      *string
	ApprovedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from the user directory for responses
	UserName *string
}

// NextBusinessDaysAfter walks forward from day counting only Mon-Fri until
// n business days have been counted and returns the date reached. A request
// with the required notice must not start before that date.
func NextBusinessDaysAfter(day time.Time, n int) time.Time {
	d := attendance.DayOf(day)
	counted := 0
	for counted < n {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			counted++
		}
	}
	return d
}
