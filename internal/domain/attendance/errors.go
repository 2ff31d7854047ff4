package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn       = errors.New("you have already checked in today")
	ErrCheckInWindowClosed    = errors.New("check-in window is closed after 18:00")
	ErrInvalidStateForCheckIn = errors.New("current attendance status does not allow check-in")

	// Check-out errors
	ErrNoCheckInRecord   = errors.New("no attendance record found for today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")

	// Overtime report errors
	ErrNotOvertimeDay  = errors.New("no overtime was recorded for that day")
	ErrNoOvertimeHours = errors.New("overtime hours are zero for that day")
	ErrFutureDate      = errors.New("cannot report overtime for a future date")

	// General errors
	ErrInvalidRange           = errors.New("end date must not be before start date")
	ErrAttendanceNotFound     = errors.New("attendance record not found")
	ErrRecordExists           = errors.New("attendance record already exists for that date")
	ErrConcurrentModification = errors.New("attendance record was modified concurrently, retry")
)
