package response

import (
	"errors"
	"net/http"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/hrplatform/attendance-backend-go/internal/domain/leave"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrCheckInWindowClosed):
		BadRequest(w, "Check-in window is closed after 18:00", nil)
	case errors.Is(err, attendance.ErrInvalidStateForCheckIn):
		BadRequest(w, "Current attendance status does not allow check-in", nil)
	case errors.Is(err, attendance.ErrNoCheckInRecord):
		NotFound(w, "No attendance record found for today")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "You have not checked in yet", nil)
	case errors.Is(err, attendance.ErrNotOvertimeDay):
		BadRequest(w, "No overtime was recorded for that day", nil)
	case errors.Is(err, attendance.ErrNoOvertimeHours):
		BadRequest(w, "Overtime hours are zero for that day", nil)
	case errors.Is(err, attendance.ErrFutureDate):
		BadRequest(w, "Cannot report overtime for a future date", nil)
	case errors.Is(err, attendance.ErrInvalidRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrRecordExists):
		Conflict(w, "Attendance record already exists for that date")
	case errors.Is(err, attendance.ErrConcurrentModification):
		Conflict(w, "Record was modified concurrently, please retry")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrForbidden):
		Forbidden(w, "Not allowed to act on this leave request")
	case errors.Is(err, leave.ErrInvalidRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, leave.ErrInvalidLeaveType):
		BadRequest(w, "Unknown leave type", nil)
	case errors.Is(err, leave.ErrLeaveNoticeRequired):
		BadRequest(w, "Leave must be requested at least 3 business days in advance", nil)
	case errors.Is(err, leave.ErrReservationTimeConflict):
		Conflict(w, "An overlapping leave request already exists for that period")
	case errors.Is(err, leave.ErrHalfDaySingleDayOnly):
		BadRequest(w, "Half-day leave must cover a single day", nil)
	case errors.Is(err, leave.ErrEarlyLeaveTodayOnly):
		BadRequest(w, "Early leave must start today", nil)
	case errors.Is(err, leave.ErrCommentRequired):
		BadRequest(w, "A comment is required", nil)
	case errors.Is(err, leave.ErrInvalidApprovalStatus):
		BadRequest(w, "Unknown approval status", nil)

	// Directory domain errors
	case errors.Is(err, directory.ErrUserNotFound):
		NotFound(w, "User not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
