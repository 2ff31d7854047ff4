package leave

import "errors"

var (
	ErrLeaveRequestNotFound    = errors.New("leave request not found")
	ErrAlreadyProcessed        = errors.New("leave request has already been processed")
	ErrForbidden               = errors.New("not allowed to act on this leave request")
	ErrInvalidRange            = errors.New("end date must not be before start date")
	ErrInvalidLeaveType        = errors.New("unknown leave type")
	ErrLeaveNoticeRequired     = errors.New("leave must be requested at least 3 business days in advance")
	ErrReservationTimeConflict = errors.New("an overlapping leave request already exists for that period")
	ErrHalfDaySingleDayOnly    = errors.New("half-day leave must cover a single day")
	ErrEarlyLeaveTodayOnly     = errors.New("early leave must start today")
	ErrCommentRequired         = errors.New("a comment is required")
	ErrInvalidApprovalStatus   = errors.New("unknown approval status")
)
